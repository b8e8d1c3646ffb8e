package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

func TestLoansAPI_Create(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	book := app.addBook(t, "Dune", "Herbert", 1)

	w := app.do(http.MethodPost, "/api/loans", map[string]any{"book_id": book.ID, "borrower": "Ann", "days": 14})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[CreatedResponse](t, w)
	assert.Equal(t, "/api/loans/"+uintString(created.ID), w.Header().Get("Location"))
	assert.Equal(t, 0, app.book(t, book.ID).CopiesAvailable)

	w = app.do(http.MethodGet, "/api/loans/"+uintString(created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[reports.LoanView](t, w)
	assert.Equal(t, "Ann", view.Borrower)
	assert.Equal(t, "Dune", view.BookTitle)
	assert.True(t, testNow.AddDate(0, 0, 14).Equal(view.DueAt), "due_at = %s", view.DueAt)
}

func TestLoansAPI_Create_DefaultDays(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	book := app.addBook(t, "Dune", "Herbert", 1)

	w := app.do(http.MethodPost, "/api/loans", map[string]any{"book_id": book.ID, "borrower": "Ann"})
	require.Equal(t, http.StatusCreated, w.Code)

	view := decode[reports.LoanView](t, app.do(http.MethodGet, "/api/loans/"+uintString(decode[CreatedResponse](t, w).ID), nil))
	assert.True(t, testNow.AddDate(0, 0, app.coordinator.DefaultLoanDays()).Equal(view.DueAt), "due_at = %s", view.DueAt)
}

func TestLoansAPI_Create_Errors(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	book := app.addBook(t, "Dune", "Herbert", 1)

	tests := []struct {
		name     string
		body     map[string]any
		expected int
		code     string
	}{
		{"missing borrower", map[string]any{"book_id": book.ID}, http.StatusBadRequest, CodeValidation},
		{"blank borrower", map[string]any{"book_id": book.ID, "borrower": "  "}, http.StatusBadRequest, CodeValidation},
		{"missing book_id", map[string]any{"borrower": "Ann"}, http.StatusBadRequest, CodeValidation},
		{"unknown book", map[string]any{"book_id": 999, "borrower": "Ann"}, http.StatusNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(http.MethodPost, "/api/loans", tt.body)
			assert.Equal(t, tt.expected, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
		})
	}

	assert.Equal(t, 1, app.book(t, book.ID).CopiesAvailable, "failed requests change nothing")
}

func TestLoansAPI_Create_NoCopiesAvailable(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	book := app.addBook(t, "Dune", "Herbert", 1)
	app.borrow(t, book.ID, "Ann")

	w := app.do(http.MethodPost, "/api/loans", map[string]any{"book_id": book.ID, "borrower": "Ben"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, CodeCapacity, decode[ErrorResponse](t, w).Code)
}

func TestLoansAPI_Return(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	book := app.addBook(t, "Dune", "Herbert", 2)
	loan := app.borrow(t, book.ID, "Ann")
	path := "/api/loans/" + uintString(loan.ID)

	t.Run("body must request a return", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPatch, path, map[string]any{}).Code)
		assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPatch, path, map[string]any{"returned_at": false}).Code)
		assert.Equal(t, http.StatusBadRequest, app.doRaw(http.MethodPatch, path, "application/json", `{"returned_at":"yes"}`).Code)
		assert.Equal(t, 1, app.book(t, book.ID).CopiesAvailable)
	})

	t.Run("returns the copy", func(t *testing.T) {
		w := app.do(http.MethodPatch, path, map[string]any{"returned_at": true})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 2, app.book(t, book.ID).CopiesAvailable)
	})

	t.Run("second return conflicts", func(t *testing.T) {
		w := app.do(http.MethodPatch, path, map[string]any{"returned_at": true})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 2, app.book(t, book.ID).CopiesAvailable, "availability unchanged")
	})

	t.Run("unknown loan", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.do(http.MethodPatch, "/api/loans/999", map[string]any{"returned_at": true}).Code)
	})
}

func TestLoansAPI_List(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	book := app.addBook(t, "Dune", "Herbert", 3)
	returned := app.borrow(t, book.ID, "Ann")
	app.borrow(t, book.ID, "Ben")
	require.Equal(t, http.StatusNoContent, app.do(http.MethodPatch, "/api/loans/"+uintString(returned.ID), map[string]any{"returned_at": true}).Code)

	// Move the clock past the due date of Ben's loan.
	*app.now = testNow.AddDate(0, 0, 30)

	active := decode[[]reports.LoanView](t, app.do(http.MethodGet, "/api/loans", nil))
	require.Len(t, active, 1)
	assert.Equal(t, "Ben", active[0].Borrower)
	assert.Equal(t, entities.LoanStatusOverdue, active[0].Status)

	history := decode[[]reports.LoanView](t, app.do(http.MethodGet, "/api/loans?status=history", nil))
	require.Len(t, history, 1)
	assert.Equal(t, "Ann", history[0].Borrower)
	assert.Equal(t, entities.LoanStatusReturned, history[0].Status)

	overdue := decode[[]reports.LoanView](t, app.do(http.MethodGet, "/api/loans?status=overdue", nil))
	require.Len(t, overdue, 1)
	assert.True(t, overdue[0].Overdue)

	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/loans?status=lost", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/loans/999", nil).Code)
}

func TestLoansAPI_Scenario(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	w := app.do(http.MethodPost, "/api/books", map[string]any{"title": "X", "author": "Y", "copies_total": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	bookID := decode[CreatedResponse](t, w).ID

	var loanIDs []uint
	for _, name := range []string{"Ann", "Ben"} {
		w := app.do(http.MethodPost, "/api/loans", map[string]any{"book_id": bookID, "borrower": name})
		require.Equal(t, http.StatusCreated, w.Code)
		loanIDs = append(loanIDs, decode[CreatedResponse](t, w).ID)
	}
	assert.Equal(t, 0, app.book(t, bookID).CopiesAvailable)

	assert.Equal(t, http.StatusUnprocessableEntity, app.do(http.MethodPost, "/api/loans", map[string]any{"book_id": bookID, "borrower": "Cat"}).Code)

	first := "/api/loans/" + uintString(loanIDs[0])
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPatch, first, map[string]any{"returned_at": true}).Code)
	assert.Equal(t, 1, app.book(t, bookID).CopiesAvailable)
	assert.Equal(t, http.StatusConflict, app.do(http.MethodPatch, first, map[string]any{"returned_at": true}).Code)
	assert.Equal(t, 1, app.book(t, bookID).CopiesAvailable)

	stats := decode[reports.Dashboard](t, app.do(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, reports.Dashboard{TotalBooks: 1, AvailableCopies: 1, ActiveLoans: 1}, stats)
}
