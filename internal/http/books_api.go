package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

// createBookRequest is the body of POST /api/books. PUT uses the same shape.
type createBookRequest struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	ISBN        *string `json:"isbn"`
	CopiesTotal *int    `json:"copies_total"`
}

func (r createBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.By(requiredText("title is required"))),
		validation.Field(&r.Author, validation.By(requiredText("author is required"))),
		validation.Field(&r.ISBN, validation.RuneLength(0, 32)),
	)
}

// patchBookRequest is the body of PATCH /api/books/:id. Absent fields are
// left unchanged.
type patchBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	ISBN        *string `json:"isbn"`
	CopiesTotal *int    `json:"copies_total"`
}

func (r patchBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.When(r.Title != nil, validation.By(requiredText("title cannot be blank")))),
		validation.Field(&r.Author, validation.When(r.Author != nil, validation.By(requiredText("author cannot be blank")))),
		validation.Field(&r.ISBN, validation.RuneLength(0, 32)),
	)
}

func (r patchBookRequest) patch() inventory.BookPatch {
	return inventory.BookPatch{
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		CopiesTotal: r.CopiesTotal,
	}
}

// requiredText rejects values that are blank after trimming. It accepts both
// string and *string.
func requiredText(message string) validation.RuleFunc {
	return func(value any) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v != nil {
				s = *v
			}
		}
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_required", message)
		}
		return nil
	}
}

// BooksController serves the catalog part of the JSON API.
type BooksController struct {
	inventory Inventory
	reports   Reports
}

func NewBooksController(inv Inventory, rep Reports) *BooksController {
	return &BooksController{inventory: inv, reports: rep}
}

// ListBooks returns every book, newest first unless ?sort= says otherwise.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.reports.ListBooksSorted(c.Request.Context(), reports.ParseSortBy(c.Query("sort")))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// CreateBook adds a book with every copy available.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	in := inventory.BookInput{Title: req.Title, Author: req.Author, CopiesTotal: 1}
	if req.ISBN != nil {
		in.ISBN = *req.ISBN
	}
	if req.CopiesTotal != nil {
		in.CopiesTotal = *req.CopiesTotal
	}

	book, err := bc.inventory.AddBook(c.Request.Context(), in)
	if err != nil {
		respondDomainError(c, err, "create book")
		return
	}
	respondCreated(c, "/api/books/"+strconv.FormatUint(uint64(book.ID), 10), book.ID)
}

// GetBook returns one book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.reports.Book(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// ReplaceBook overwrites title, author and ISBN. An absent ISBN clears it;
// an absent copies_total keeps the current inventory.
// PUT /api/books/:id
func (bc *BooksController) ReplaceBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	isbn := ""
	if req.ISBN != nil {
		isbn = *req.ISBN
	}
	patch := inventory.BookPatch{
		Title:       &req.Title,
		Author:      &req.Author,
		ISBN:        &isbn,
		CopiesTotal: req.CopiesTotal,
	}

	book, err := bc.inventory.UpdateBook(c.Request.Context(), id, patch)
	if err != nil {
		respondDomainError(c, err, "replace book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// PatchBook applies a partial edit. A copies_total change moves
// copies_available by the same amount.
// PATCH /api/books/:id
func (bc *BooksController) PatchBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req patchBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(c, err)
		return
	}
	patch := req.patch()
	if patch.Empty() {
		respondBadRequest(c, "no fields to update")
		return
	}

	book, err := bc.inventory.UpdateBook(c.Request.Context(), id, patch)
	if err != nil {
		respondDomainError(c, err, "patch book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book without active loans.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.inventory.DeleteBook(c.Request.Context(), id); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	c.Status(http.StatusNoContent)
}
