package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/middleware"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

// Notices shown after a successful form submission.
const (
	noticeBookAdded    = "Book added."
	noticeBookUpdated  = "Book updated."
	noticeBookDeleted  = "Book deleted."
	noticeBookBorrowed = "Book borrowed."
	noticeBookReturned = "Book returned."
)

type UIController struct {
	inventory Inventory
	reports   Reports
	sessions  *middleware.SessionManager
}

func NewUIController(inv Inventory, rep Reports, sessions *middleware.SessionManager) *UIController {
	return &UIController{
		inventory: inv,
		reports:   rep,
		sessions:  sessions,
	}
}

// Dashboard renders the headline numbers.
// GET /
func (ui *UIController) Dashboard(c *gin.Context) {
	stats, err := ui.reports.Dashboard(c.Request.Context())
	if err != nil {
		ui.renderError(c, err, "dashboard")
		return
	}
	c.HTML(http.StatusOK, "dashboard", ui.page(c, "Dashboard", gin.H{"Stats": stats}))
}

// BooksPage lists the catalog.
// GET /books
func (ui *UIController) BooksPage(c *gin.Context) {
	sortBy := reports.ParseSortBy(c.Query("sort"))
	books, err := ui.reports.ListBooksSorted(c.Request.Context(), sortBy)
	if err != nil {
		ui.renderError(c, err, "books page")
		return
	}
	c.HTML(http.StatusOK, "books", ui.page(c, "Books", gin.H{
		"Books": books,
		"Sort":  string(sortBy),
	}))
}

// AddBookForm renders an empty book form.
// GET /books/add
func (ui *UIController) AddBookForm(c *gin.Context) {
	c.HTML(http.StatusOK, "book_form", ui.page(c, "Add book", gin.H{
		"Book":   &entities.Book{CopiesTotal: 1},
		"Action": "/books/add",
	}))
}

// AddBook creates a book from the submitted form.
// POST /books/add
func (ui *UIController) AddBook(c *gin.Context) {
	in := inventory.BookInput{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		ISBN:        c.PostForm("isbn"),
		CopiesTotal: formInt(c, "copies_total", 1),
	}

	if _, err := ui.inventory.AddBook(c.Request.Context(), in); err != nil {
		ui.redirectWithError(c, err, "/books/add")
		return
	}
	ui.redirect(c, noticeBookAdded, "/books")
}

// EditBookForm renders the form for an existing book.
// GET /books/:id/edit
func (ui *UIController) EditBookForm(c *gin.Context) {
	id, ok := parseUIID(c)
	if !ok {
		return
	}

	book, err := ui.reports.Book(c.Request.Context(), id)
	if err != nil {
		if entities.IsNotFound(err) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		ui.renderError(c, err, "edit book form")
		return
	}

	c.HTML(http.StatusOK, "book_form", ui.page(c, "Edit book", gin.H{
		"Book":   book,
		"Action": "/books/" + strconv.FormatUint(uint64(id), 10) + "/edit",
	}))
}

// EditBook applies the submitted form. Changing the number of copies moves
// availability by the same amount.
// POST /books/:id/edit
func (ui *UIController) EditBook(c *gin.Context) {
	id, ok := parseUIID(c)
	if !ok {
		return
	}

	var patch inventory.BookPatch
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("author"); ok {
		patch.Author = &v
	}
	if v, ok := c.GetPostForm("isbn"); ok {
		patch.ISBN = &v
	}
	if v, ok := c.GetPostForm("copies_total"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			patch.CopiesTotal = &n
		}
	}

	editPath := "/books/" + strconv.FormatUint(uint64(id), 10) + "/edit"
	if _, err := ui.inventory.UpdateBook(c.Request.Context(), id, patch); err != nil {
		if entities.IsNotFound(err) {
			editPath = "/books"
		}
		ui.redirectWithError(c, err, editPath)
		return
	}
	ui.redirect(c, noticeBookUpdated, "/books")
}

// DeleteBook removes a book unless copies are still out.
// POST /books/:id/delete
func (ui *UIController) DeleteBook(c *gin.Context) {
	id, ok := parseUIID(c)
	if !ok {
		return
	}

	if err := ui.inventory.DeleteBook(c.Request.Context(), id); err != nil {
		ui.redirectWithError(c, err, "/books")
		return
	}
	ui.redirect(c, noticeBookDeleted, "/books")
}

// LoansPage shows the borrow form, active loans and recent returns.
// GET /loans
func (ui *UIController) LoansPage(c *gin.Context) {
	ctx := c.Request.Context()

	books, err := ui.reports.ListBooksSorted(ctx, reports.SortTitle)
	if err != nil {
		ui.renderError(c, err, "loans page books")
		return
	}
	active, err := ui.reports.ActiveLoans(ctx)
	if err != nil {
		ui.renderError(c, err, "loans page active")
		return
	}
	history, err := ui.reports.LoanHistory(ctx, 0)
	if err != nil {
		ui.renderError(c, err, "loans page history")
		return
	}

	c.HTML(http.StatusOK, "loans", ui.page(c, "Loans", gin.H{
		"Books":   books,
		"Active":  active,
		"History": history,
	}))
}

// Borrow lends a copy to the named borrower.
// POST /borrow
func (ui *UIController) Borrow(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.PostForm("book_id"), 10, 32)
	if err != nil {
		ui.redirect(c, "Choose a book to borrow.", "/loans")
		return
	}
	days := formInt(c, "days", ui.inventory.DefaultLoanDays())

	if _, err := ui.inventory.Borrow(c.Request.Context(), uint(bookID), c.PostForm("borrower"), days); err != nil {
		ui.redirectWithError(c, err, "/loans")
		return
	}
	ui.redirect(c, noticeBookBorrowed, "/loans")
}

// Return closes a loan.
// POST /return/:id
func (ui *UIController) Return(c *gin.Context) {
	id, ok := parseUIID(c)
	if !ok {
		return
	}

	if _, err := ui.inventory.Return(c.Request.Context(), id); err != nil {
		ui.redirectWithError(c, err, "/loans")
		return
	}
	ui.redirect(c, noticeBookReturned, "/loans")
}

// page adds the fields every template expects.
func (ui *UIController) page(c *gin.Context, title string, data gin.H) gin.H {
	data["Title"] = title
	data["CSRFField"] = template.HTML(middleware.CSRFTokenField(c))
	data["ReadOnly"] = c.GetBool(middleware.ContextKeyReadOnly)
	data["DefaultLoanDays"] = ui.inventory.DefaultLoanDays()
	if ui.sessions != nil {
		data["Flash"] = ui.sessions.PopFlash(c)
	}
	return data
}

func (ui *UIController) redirect(c *gin.Context, notice, location string) {
	if ui.sessions != nil {
		ui.sessions.PutFlash(c, notice)
	}
	c.Redirect(http.StatusSeeOther, location)
}

func (ui *UIController) redirectWithError(c *gin.Context, err error, location string) {
	if _, code := statusForError(err); code == CodeInternal {
		_ = c.Error(err)
		requestLog(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("Form submission failed")
	}
	ui.redirect(c, noticeFor(err), location)
}

func (ui *UIController) renderError(c *gin.Context, err error, context string) {
	_ = c.Error(err)
	requestLog(c).Error().Err(err).Str("context", context).Msg("Page render failed")
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// noticeFor turns a coordinator error into the message shown to the user.
func noticeFor(err error) string {
	switch {
	case errors.Is(err, entities.ErrBookNotFound):
		return "Book not found."
	case errors.Is(err, entities.ErrLoanNotFound):
		return "Loan not found."
	case errors.Is(err, entities.ErrNoCopiesAvailable):
		return "No copies of this book are available."
	case errors.Is(err, entities.ErrBookHasActiveLoans):
		return "Cannot delete: the book still has copies on loan."
	case errors.Is(err, entities.ErrLoanAlreadyReturned):
		return "This loan has already been returned."
	case entities.IsValidation(err):
		return "Please check the form: " + strings.TrimPrefix(err.Error(), entities.ErrValidation.Error()+": ")
	default:
		return "Something went wrong. Please try again."
	}
}

// parseUIID reads the :id parameter for page routes.
func parseUIID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// formInt reads an integer form field, falling back when it is absent or
// malformed.
func formInt(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(name)))
	if err != nil {
		return fallback
	}
	return n
}
