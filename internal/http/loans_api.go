package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/simplelibrary/internal/reports"
)

// Values of the ?status= filter on GET /api/loans.
const (
	loanFilterActive  = "active"
	loanFilterHistory = "history"
	loanFilterOverdue = "overdue"
)

// createLoanRequest is the body of POST /api/loans.
type createLoanRequest struct {
	BookID   uint   `json:"book_id"`
	Borrower string `json:"borrower"`
	Days     *int   `json:"days"`
}

func (r createLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("book_id is required")),
		validation.Field(&r.Borrower,
			validation.By(requiredText("borrower is required")),
			validation.RuneLength(0, 255),
		),
	)
}

// updateLoanRequest is the body of PATCH /api/loans/:id. The only supported
// change is closing the loan with {"returned_at": true}.
type updateLoanRequest struct {
	ReturnedAt *bool `json:"returned_at"`
}

func (r updateLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReturnedAt, validation.By(func(value any) error {
			if v, _ := value.(*bool); v == nil || !*v {
				return validation.NewError("validation_return_required", "returned_at must be true")
			}
			return nil
		})),
	)
}

// LoansController serves the lending part of the JSON API.
type LoansController struct {
	inventory Inventory
	reports   Reports
}

func NewLoansController(inv Inventory, rep Reports) *LoansController {
	return &LoansController{inventory: inv, reports: rep}
}

// ListLoans returns active loans by default. ?status=history returns the
// most recently returned loans (bounded by ?limit=) and ?status=overdue the
// active loans past due.
// GET /api/loans
func (lc *LoansController) ListLoans(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		views []reports.LoanView
		err   error
	)
	switch status := c.DefaultQuery("status", loanFilterActive); status {
	case loanFilterActive:
		views, err = lc.reports.ActiveLoans(ctx)
	case loanFilterHistory:
		views, err = lc.reports.LoanHistory(ctx, parseQueryInt(c, "limit", 0))
	case loanFilterOverdue:
		views, err = lc.reports.OverdueLoans(ctx)
	default:
		respondBadRequest(c, "status must be one of active, history, overdue")
		return
	}
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetLoan returns one loan with its book title.
// GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := lc.reports.Loan(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateLoan borrows a copy. days defaults to the configured loan period
// and is clamped to at least one.
// POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	days := lc.inventory.DefaultLoanDays()
	if req.Days != nil {
		days = *req.Days
	}

	loan, err := lc.inventory.Borrow(c.Request.Context(), req.BookID, req.Borrower, days)
	if err != nil {
		respondDomainError(c, err, "create loan")
		return
	}
	respondCreated(c, "/api/loans/"+strconv.FormatUint(uint64(loan.ID), 10), loan.ID)
}

// UpdateLoan returns the borrowed copy.
// PATCH /api/loans/:id
func (lc *LoansController) UpdateLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	if _, err := lc.inventory.Return(c.Request.Context(), id); err != nil {
		respondDomainError(c, err, "return loan")
		return
	}
	c.Status(http.StatusNoContent)
}
