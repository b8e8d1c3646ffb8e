package entrypoint

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/simplelibrary/internal/config"
	"github.com/mrlokans/simplelibrary/internal/inventory"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.Database{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "library.db"),
		},
		Library: config.Library{DefaultLoanDays: 14, HistoryLimit: 10},
	}
}

func TestNewApp_WiresServices(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	assert.Equal(t, 14, app.Inventory.DefaultLoanDays())

	book, err := app.Inventory.AddBook(ctx, inventory.BookInput{Title: "Dune", Author: "Frank Herbert", CopiesTotal: 2})
	require.NoError(t, err)
	_, err = app.Inventory.Borrow(ctx, book.ID, "Ann", 0)
	require.NoError(t, err)

	d, err := app.Reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.TotalBooks)
	assert.Equal(t, int64(1), d.AvailableCopies)
	assert.Equal(t, int64(1), d.ActiveLoans)

	app.Audit.Wait()
	events, total, err := app.Audit.GetEvents(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mysql"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestNewSessions_SQLite(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	sessions, err := newSessions(cfg, app.DB)
	require.NoError(t, err)
	require.NotNil(t, sessions)
	assert.Equal(t, "session", sessions.Cookie.Name)
}

func TestCSRFSecret(t *testing.T) {
	t.Run("configured hex secret is decoded", func(t *testing.T) {
		secret, err := csrfSecret("00ff")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0xff}, secret)
	})

	t.Run("empty secret generates 32 bytes", func(t *testing.T) {
		secret, err := csrfSecret("")
		require.NoError(t, err)
		assert.Len(t, secret, 32)
	})
}

func TestServe_ListenFailureRunsShutdown(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := &config.Config{
		HTTP:   config.HTTP{Host: "127.0.0.1", Port: int32(busy.Addr().(*net.TCPAddr).Port)},
		Global: config.Global{ShutdownTimeoutInSeconds: 1},
	}

	var stopped bool
	err = Serve(gin.New(), cfg, func(ctx context.Context) {
		stopped = true
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
	assert.True(t, stopped)
}
