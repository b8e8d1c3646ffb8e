package middleware

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/simplelibrary/internal/logger"
)

const sessionKeyFlash = "flash"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	Lifetime      time.Duration
	SecureCookies bool
}

// SessionManager wraps scs.SessionManager with the flash notice helpers the
// UI uses to report the outcome of a form submission after its redirect.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager backed by the SQLite database
// the application already uses.
func NewSessionManager(sqlDB *sql.DB, cfg SessionConfig) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := newSessionManager(cfg)
	sm.Store = sqlite3store.New(sqlDB)
	return &SessionManager{SessionManager: sm}, nil
}

// NewMemorySessionManager keeps sessions in process memory. Used when the
// main database is PostgreSQL, and in tests.
func NewMemorySessionManager(cfg SessionConfig) *SessionManager {
	sm := newSessionManager(cfg)
	sm.Store = memstore.New()
	return &SessionManager{SessionManager: sm}
}

func newSessionManager(cfg SessionConfig) *scs.SessionManager {
	sm := scs.New()

	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 24 * time.Hour
	}
	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.Lifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	// Lax so the notice survives the redirect after a form post.
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	return sm
}

var sessionLog = logger.Component("sessions")

// LoadSession attaches the visitor's session to the request context. The
// flash helpers are the only writers, and each one commits the session
// itself, so nothing is saved after the handler runs.
func (sm *SessionManager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			sessionLog.Error().Err(err).Msg("Failed to load session")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PutFlash stores a one-shot notice for the page the caller redirects to.
// Call it before writing the response: the session cookie goes out with
// the redirect.
func (sm *SessionManager) PutFlash(c *gin.Context, message string) {
	sm.Put(c.Request.Context(), sessionKeyFlash, message)
	sm.commit(c)
}

// PopFlash returns the pending notice and clears it. Pages without a notice
// leave the session untouched.
func (sm *SessionManager) PopFlash(c *gin.Context) string {
	ctx := c.Request.Context()
	if !sm.Exists(ctx, sessionKeyFlash) {
		return ""
	}
	message := sm.PopString(ctx, sessionKeyFlash)
	sm.commit(c)
	return message
}

func (sm *SessionManager) commit(c *gin.Context) {
	ctx := c.Request.Context()
	token, expiry, err := sm.Commit(ctx)
	if err != nil {
		// The notice is lost; the form submission itself already succeeded.
		sessionLog.Warn().Err(err).Msg("Failed to save flash notice")
		return
	}
	sm.WriteSessionCookie(ctx, c.Writer, token, expiry)
}
