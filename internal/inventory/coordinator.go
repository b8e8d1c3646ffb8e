// Package inventory owns every change to a book's copy counts.
//
// The Coordinator is the only writer of copies_available. Each operation runs
// inside one UnitOfWork so that a loan row and the availability change it
// implies commit or roll back together:
//
//	copies_available + active loans == copies_total
//
// The equation can be broken in one direction only: ResizeCopies may shrink
// copies_total below the number of outstanding loans. Availability is then
// clamped to zero and the equation holds again once enough loans come back.
//
// # Usage
//
//	coord := inventory.NewCoordinator(inventory.NewGormUnitOfWork(db.DB), inventory.Config{})
//	loan, err := coord.Borrow(ctx, bookID, "Ann", 14)
//	if entities.IsCapacity(err) {
//	    // no copy left
//	}
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/simplelibrary/internal/config"
	"github.com/mrlokans/simplelibrary/internal/entities"
)

// AuditLogger receives a record of every committed mutation.
type AuditLogger interface {
	LogBookEvent(action string, book *entities.Book, description string)
	LogLoanEvent(action string, loan *entities.Loan, description string)
}

// Config tunes a Coordinator. Zero values fall back to defaults.
type Config struct {
	DefaultLoanDays int
	Now             func() time.Time
	Audit           AuditLogger
}

// BookInput is the data needed to add a title to the catalog.
type BookInput struct {
	Title       string
	Author      string
	ISBN        string
	CopiesTotal int
}

// BookPatch is a partial edit. Nil fields are left unchanged; an empty ISBN
// clears it.
type BookPatch struct {
	Title       *string
	Author      *string
	ISBN        *string
	CopiesTotal *int
}

// Empty reports whether the patch changes nothing.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.ISBN == nil && p.CopiesTotal == nil
}

type Coordinator struct {
	uow             UnitOfWork
	now             func() time.Time
	audit           AuditLogger
	defaultLoanDays int
}

func NewCoordinator(uow UnitOfWork, cfg Config) *Coordinator {
	c := &Coordinator{
		uow:             uow,
		now:             cfg.Now,
		audit:           cfg.Audit,
		defaultLoanDays: cfg.DefaultLoanDays,
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.defaultLoanDays < 1 {
		c.defaultLoanDays = config.DefaultLoanDays
	}
	return c
}

// DefaultLoanDays is the loan period used when a caller does not pick one.
func (c *Coordinator) DefaultLoanDays() int {
	return c.defaultLoanDays
}

// AddBook creates a book with every copy available. CopiesTotal is clamped
// to at least one.
func (c *Coordinator) AddBook(ctx context.Context, in BookInput) (*entities.Book, error) {
	book := &entities.Book{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		ISBN:        entities.NormalizeISBN(in.ISBN),
		CopiesTotal: max(in.CopiesTotal, 1),
	}

	err := c.uow.Do(ctx, func(s Stores) error {
		return s.Books.Create(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	c.logBook(entities.AuditActionBookAdd, book, fmt.Sprintf("Added %q by %s (%d copies)", book.Title, book.Author, book.CopiesTotal))
	return book, nil
}

// Borrow lends one copy of a book for the given number of days (at least
// one). The loan insert and the availability decrement share a transaction.
func (c *Coordinator) Borrow(ctx context.Context, bookID uint, borrower string, days int) (*entities.Loan, error) {
	borrower = strings.TrimSpace(borrower)
	days = max(days, 1)

	var loan *entities.Loan
	err := c.uow.Do(ctx, func(s Stores) error {
		book, err := s.Books.GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if borrower == "" {
			return entities.Validationf("borrower is required")
		}
		if !book.CanBorrow() {
			return entities.ErrNoCopiesAvailable
		}

		// Lost a race for the last copy between the read and the update.
		taken, err := s.Books.TakeCopy(ctx, bookID)
		if err != nil {
			return err
		}
		if !taken {
			return entities.ErrNoCopiesAvailable
		}

		now := c.now()
		loan = &entities.Loan{
			BookID:     bookID,
			Borrower:   borrower,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, days),
		}
		return s.Loans.Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	c.logLoan(entities.AuditActionLoanBorrow, loan, fmt.Sprintf("%s borrowed book #%d for %d days", loan.Borrower, bookID, days))
	return loan, nil
}

// Return closes an active loan and puts the copy back on the shelf. A loan
// whose book has since disappeared is still closed.
func (c *Coordinator) Return(ctx context.Context, loanID uint) (*entities.Loan, error) {
	var loan *entities.Loan
	err := c.uow.Do(ctx, func(s Stores) error {
		var err error
		loan, err = s.Loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.IsActive() {
			return entities.ErrLoanAlreadyReturned
		}

		at := c.now()
		if err := s.Loans.MarkReturned(ctx, loanID, at); err != nil {
			return err
		}
		loan.ReturnedAt = &at

		err = s.Books.ReturnCopy(ctx, loan.BookID)
		if err != nil && !entities.IsNotFound(err) {
			return err
		}
		if err != nil {
			log.Warn().Uint("loan_id", loanID).Uint("book_id", loan.BookID).Msg("Returned loan references a missing book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logLoan(entities.AuditActionLoanReturn, loan, fmt.Sprintf("%s returned book #%d", loan.Borrower, loan.BookID))
	return loan, nil
}

// ResizeCopies changes copies_total and moves copies_available by the same
// delta, clamped to [0, newTotal].
func (c *Coordinator) ResizeCopies(ctx context.Context, bookID uint, newTotal int) (*entities.Book, error) {
	return c.UpdateBook(ctx, bookID, BookPatch{CopiesTotal: &newTotal})
}

// UpdateBook applies a partial edit. A copies_total change is reconciled the
// same way as ResizeCopies.
func (c *Coordinator) UpdateBook(ctx context.Context, bookID uint, patch BookPatch) (*entities.Book, error) {
	var book *entities.Book
	err := c.uow.Do(ctx, func(s Stores) error {
		var err error
		book, err = s.Books.GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			book.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Author != nil {
			book.Author = strings.TrimSpace(*patch.Author)
		}
		if patch.ISBN != nil {
			book.ISBN = entities.NormalizeISBN(*patch.ISBN)
		}
		if patch.CopiesTotal != nil {
			resize(book, *patch.CopiesTotal)
		}

		return s.Books.Save(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	c.logBook(entities.AuditActionBookUpdate, book, fmt.Sprintf("Updated %q (%d/%d available)", book.Title, book.CopiesAvailable, book.CopiesTotal))
	return book, nil
}

// DeleteBook removes a book that has no active loans.
func (c *Coordinator) DeleteBook(ctx context.Context, bookID uint) error {
	var book *entities.Book
	err := c.uow.Do(ctx, func(s Stores) error {
		var err error
		book, err = s.Books.GetByIDForUpdate(ctx, bookID)
		if err != nil {
			return err
		}

		active, err := s.Loans.CountActiveForBook(ctx, bookID)
		if err != nil {
			return err
		}
		if active > 0 {
			return entities.ErrBookHasActiveLoans
		}

		return s.Books.Delete(ctx, bookID)
	})
	if err != nil {
		return err
	}

	c.logBook(entities.AuditActionBookDelete, book, fmt.Sprintf("Deleted %q by %s", book.Title, book.Author))
	return nil
}

func resize(book *entities.Book, newTotal int) {
	newTotal = max(newTotal, 1)
	delta := newTotal - book.CopiesTotal
	book.CopiesTotal = newTotal
	book.CopiesAvailable = min(max(book.CopiesAvailable+delta, 0), newTotal)
}

func (c *Coordinator) logBook(action string, book *entities.Book, description string) {
	if c.audit != nil {
		c.audit.LogBookEvent(action, book, description)
	}
}

func (c *Coordinator) logLoan(action string, loan *entities.Loan, description string) {
	if c.audit != nil {
		c.audit.LogLoanEvent(action, loan, description)
	}
}
