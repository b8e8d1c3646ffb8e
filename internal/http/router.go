package http

import (
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/simplelibrary/internal/middleware"
	"github.com/mrlokans/simplelibrary/internal/web"
)

// templateFuncs are available in every page template.
var templateFuncs = template.FuncMap{
	"formatDate": formatDate,
}

// formatDate renders a time.Time or *time.Time in UTC minutes.
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("2006-01-02 15:04")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04")
	default:
		return ""
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(middleware.SecurityHeaders())
	if cfg.SecureCookies {
		router.Use(middleware.StrictTransportSecurity())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(middleware.CSRF(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadSession())
	}

	router.Use(middleware.NewReadOnly(cfg.ReadOnly).Handler())

	tmpl, err := web.Templates(cfg.TemplatesPath, templateFuncs)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.StaticFS("/static", web.Static(cfg.StaticPath))

	var pinger Pinger
	if cfg.Database != nil {
		pinger = cfg.Database
	}
	health := NewHealthController(pinger, cfg.Version)
	books := NewBooksController(cfg.Inventory, cfg.Reports)
	loans := NewLoansController(cfg.Inventory, cfg.Reports)
	stats := NewStatsController(cfg.Reports)
	ui := NewUIController(cfg.Inventory, cfg.Reports, cfg.Sessions)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Books API endpoints
	router.GET("/api/books", books.ListBooks)
	router.POST("/api/books", books.CreateBook)
	router.GET("/api/books/:id", books.GetBook)
	router.PUT("/api/books/:id", books.ReplaceBook)
	router.PATCH("/api/books/:id", books.PatchBook)
	router.DELETE("/api/books/:id", books.DeleteBook)

	// Loans API endpoints
	router.GET("/api/loans", loans.ListLoans)
	router.POST("/api/loans", loans.CreateLoan)
	router.GET("/api/loans/:id", loans.GetLoan)
	router.PATCH("/api/loans/:id", loans.UpdateLoan)

	router.GET("/api/stats", stats.GetStats)

	// Audit endpoints
	if cfg.Audit != nil {
		audit := NewAuditController(cfg.Audit)
		router.GET("/api/audit", audit.GetAuditEvents)
		router.GET("/api/audit/:entity/:id", audit.GetEntityEvents)
	}

	// Task management endpoints
	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus, cfg.AuditCleanup)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	// UI routes
	router.GET("/", ui.Dashboard)
	router.GET("/books", ui.BooksPage)
	router.GET("/books/add", ui.AddBookForm)
	router.POST("/books/add", ui.AddBook)
	router.GET("/books/:id/edit", ui.EditBookForm)
	router.POST("/books/:id/edit", ui.EditBook)
	router.POST("/books/:id/delete", ui.DeleteBook)
	router.GET("/loans", ui.LoansPage)
	router.POST("/borrow", ui.Borrow)
	router.POST("/return/:id", ui.Return)

	return router, nil
}
