package http

import (
	"github.com/mrlokans/simplelibrary/internal/database"
	"github.com/mrlokans/simplelibrary/internal/middleware"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Inventory Inventory
	Reports   Reports
	Database  *database.Database

	// Audit trail (optional)
	Audit AuditReader

	// Background tasks (optional)
	TaskStatus   TaskStatuser
	AuditCleanup AuditCleanupRunner

	// Sessions carry the flash notice between a form post and its redirect.
	// Without them the UI still works but shows no notices.
	Sessions *middleware.SessionManager

	// CSRF protection for the HTML forms. Disabled when empty.
	CSRFSecret    []byte
	SecureCookies bool

	// Reject write requests
	ReadOnly bool

	// UI paths. Empty means the assets embedded in the binary.
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
