// Package entrypoint assembles the application from configuration and runs
// the HTTP server until it receives SIGINT or SIGTERM.
package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/simplelibrary/internal/audit"
	"github.com/mrlokans/simplelibrary/internal/config"
	"github.com/mrlokans/simplelibrary/internal/database"
	auditdb "github.com/mrlokans/simplelibrary/internal/database/audit"
	http_controllers "github.com/mrlokans/simplelibrary/internal/http"
	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/middleware"
	"github.com/mrlokans/simplelibrary/internal/reports"
	"github.com/mrlokans/simplelibrary/internal/scheduler"
	"github.com/mrlokans/simplelibrary/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the core services shared by the server and the CLI commands.
type App struct {
	DB        *database.Database
	Audit     *audit.Service
	Inventory *inventory.Coordinator
	Reports   *reports.Facade
}

// NewApp opens the configured database and builds the core services.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	auditSvc := audit.NewService(auditdb.NewRepository(db.DB))
	coordinator := inventory.NewCoordinator(inventory.NewGormUnitOfWork(db.DB), inventory.Config{
		DefaultLoanDays: cfg.Library.DefaultLoanDays,
		Audit:           auditSvc,
	})
	facade := reports.NewFacade(db.DB, reports.Config{
		Dialect:      db.Dialect(),
		HistoryLimit: cfg.Library.HistoryLimit,
	})

	return &App{
		DB:        db,
		Audit:     auditSvc,
		Inventory: coordinator,
		Reports:   facade,
	}, nil
}

// Close flushes pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}

// Serve runs the server until a shutdown signal arrives, then stops it
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		// Background work was started before the listener; stop it anyway.
		if onShutdown != nil {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			onShutdown(ctx)
		}
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Background work stops after the last request has finished.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info().Msg("Server exited")
	return nil
}

// Run starts the library server with every configured component.
func Run(cfg *config.Config, version string) error {
	log.Info().Str("version", version).Str("driver", cfg.Database.Driver).Msg("Starting library")
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	sessions, err := newSessions(cfg, app.DB)
	if err != nil {
		return fmt.Errorf("initialize sessions: %w", err)
	}

	csrfSecret, err := csrfSecret(cfg.Session.Secret)
	if err != nil {
		return fmt.Errorf("csrf secret: %w", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Inventory:     app.Inventory,
		Reports:       app.Reports,
		Database:      app.DB,
		Audit:         app.Audit,
		Sessions:      sessions,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Session.SecureCookies,
		ReadOnly:      cfg.Global.ReadOnly,
		TemplatesPath: cfg.UI.TemplatesPath,
		StaticPath:    cfg.UI.StaticPath,
		Version:       version,
	}
	if cfg.Global.ReadOnly {
		log.Warn().Msg("Read-only mode enabled - write operations will be blocked")
	}

	// Initialize task queue if enabled
	var (
		taskClient    *tasks.Client
		cleanup       *scheduler.AuditCleanupScheduler
		taskCtxCancel context.CancelFunc
	)
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(app.Audit))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)

		cleanup = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := cleanup.Start(taskCtx); err != nil {
			taskCtxCancel()
			return fmt.Errorf("start audit cleanup scheduler: %w", err)
		}

		routerCfg.TaskStatus = taskClient
		routerCfg.AuditCleanup = cleanup
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		if taskCtxCancel != nil {
			taskCtxCancel()
		}
		return err
	}

	onShutdown := func(ctx context.Context) {
		if cleanup != nil {
			cleanup.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, onShutdown)
}

// newSessions stores sessions in the SQLite database when there is one.
// PostgreSQL deployments keep them in memory.
func newSessions(cfg *config.Config, db *database.Database) (*middleware.SessionManager, error) {
	sessionCfg := middleware.SessionConfig{
		Lifetime:      cfg.Session.Lifetime,
		SecureCookies: cfg.Session.SecureCookies,
	}
	if db.Driver() != config.DriverSQLite {
		log.Info().Msg("Sessions are kept in memory")
		return middleware.NewMemorySessionManager(sessionCfg), nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, err
	}
	return middleware.NewSessionManager(sqlDB, sessionCfg)
}

// csrfSecret decodes the configured secret or generates one for this run.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		return middleware.DecodeSecret(configured), nil
	}

	secret, err := middleware.GenerateSecret()
	if err != nil {
		return nil, err
	}
	log.Warn().Msg("Generated session secret (set SESSION_SECRET to persist across restarts)")
	return middleware.DecodeSecret(secret), nil
}
