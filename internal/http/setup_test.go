package http

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/simplelibrary/internal/audit"
	"github.com/mrlokans/simplelibrary/internal/database"
	auditdb "github.com/mrlokans/simplelibrary/internal/database/audit"
	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/middleware"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type testApp struct {
	router      *gin.Engine
	db          *database.Database
	coordinator *inventory.Coordinator
	audit       *audit.Service
	now         *time.Time
}

// setupTestApp wires a router against a fresh SQLite file. CSRF is off so
// that form posts can be made directly.
func setupTestApp(t *testing.T, mutate ...func(*RouterConfig)) (*testApp, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	now := testNow
	clock := func() time.Time { return now }

	auditSvc := audit.NewService(auditdb.NewRepository(db.DB))
	coord := inventory.NewCoordinator(inventory.NewGormUnitOfWork(db.DB), inventory.Config{
		Now:   clock,
		Audit: auditSvc,
	})
	facade := reports.NewFacade(db.DB, reports.Config{Dialect: db.Dialect(), Now: clock})

	cfg := RouterConfig{
		Inventory: coord,
		Reports:   facade,
		Database:  db,
		Audit:     auditSvc,
		Sessions:  middleware.NewMemorySessionManager(middleware.SessionConfig{Lifetime: time.Hour}),
		Version:   "test",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	router, err := NewRouter(cfg)
	require.NoError(t, err)

	app := &testApp{router: router, db: db, coordinator: coord, audit: auditSvc, now: &now}
	cleanup := func() {
		auditSvc.Wait()
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}
	return app, cleanup
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doRaw(method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) addBook(t *testing.T, title, author string, copies int) *entities.Book {
	t.Helper()
	book, err := a.coordinator.AddBook(context.Background(), inventory.BookInput{Title: title, Author: author, CopiesTotal: copies})
	require.NoError(t, err)
	return book
}

func (a *testApp) borrow(t *testing.T, bookID uint, borrower string) *entities.Loan {
	t.Helper()
	loan, err := a.coordinator.Borrow(context.Background(), bookID, borrower, 7)
	require.NoError(t, err)
	return loan
}

func (a *testApp) book(t *testing.T, id uint) *entities.Book {
	t.Helper()
	var book entities.Book
	require.NoError(t, a.db.DB.First(&book, id).Error)
	return &book
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
