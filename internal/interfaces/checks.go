package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/simplelibrary/internal/audit"
	"github.com/mrlokans/simplelibrary/internal/database"
	"github.com/mrlokans/simplelibrary/internal/database/books"
	"github.com/mrlokans/simplelibrary/internal/database/loans"
	"github.com/mrlokans/simplelibrary/internal/http"
	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/reports"
	"github.com/mrlokans/simplelibrary/internal/scheduler"
	"github.com/mrlokans/simplelibrary/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ inventory.BookStore = (*books.Repository)(nil)
var _ inventory.LoanLedger = (*loans.Repository)(nil)
var _ inventory.UnitOfWork = (*inventory.GormUnitOfWork)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.Inventory = (*inventory.Coordinator)(nil)
var _ http.Reports = (*reports.Facade)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ inventory.AuditLogger = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.TaskStatuser = (*tasks.Client)(nil)
var _ http.AuditCleanupRunner = (*scheduler.AuditCleanupScheduler)(nil)
