package entities

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoanStatus is the derived lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusReturned LoanStatus = "returned"
)

// Loan records one copy of a book lent to a borrower.
// BookID is a plain foreign-key column; callers resolve the book explicitly
// through the catalog store.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	Borrower   string     `gorm:"size:255;not null" json:"borrower"`
	BorrowedAt time.Time  `gorm:"index;not null" json:"borrowed_at"`
	DueAt      time.Time  `gorm:"index;not null" json:"due_at"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsActive reports whether the loan has not been returned yet.
func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether the loan is active and past its due time.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueAt)
}

// Status returns the lifecycle state at the given time.
func (l *Loan) Status(now time.Time) LoanStatus {
	switch {
	case !l.IsActive():
		return LoanStatusReturned
	case l.IsOverdue(now):
		return LoanStatusOverdue
	default:
		return LoanStatusActive
	}
}

func (l Loan) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.BookID, validation.Required.Error("book_id is required")),
		validation.Field(&l.Borrower,
			validation.By(notBlank("borrower is required")),
			validation.RuneLength(0, 255),
		),
		validation.Field(&l.DueAt,
			validation.Required,
			validation.Min(l.BorrowedAt).Error("due_at must not precede borrowed_at"),
		),
	)
}
