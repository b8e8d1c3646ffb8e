// Package loans is the loan ledger.
//
// Loans are created on borrow, closed exactly once on return and never
// deleted, so the table doubles as the lending history.
package loans

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/simplelibrary/internal/entities"
)

// DefaultHistoryLimit is used by ListHistory when limit is not positive.
const DefaultHistoryLimit = 50

// Repository handles all loan database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the time source used for defaults.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Create records a new active loan. BorrowedAt defaults to now.
func (r *Repository) Create(ctx context.Context, loan *entities.Loan) error {
	if loan.BorrowedAt.IsZero() {
		loan.BorrowedAt = r.now()
	}
	loan.ReturnedAt = nil
	if err := loan.Validate(); err != nil {
		return entities.NewValidationError(err)
	}
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID retrieves a loan by its ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkReturned closes an active loan. The update is conditional on the loan
// still being open, so a concurrent second return gets ErrLoanAlreadyReturned.
func (r *Repository) MarkReturned(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Loan{}).
		Where("id = ? AND returned_at IS NULL", id).
		UpdateColumn("returned_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// Distinguish an unknown loan from one that was already closed.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return entities.ErrLoanAlreadyReturned
}

// ListActive returns open loans, most recently borrowed first.
func (r *Repository) ListActive(ctx context.Context) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).
		Where("returned_at IS NULL").
		Order("borrowed_at DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

// ListHistory returns returned loans, most recently returned first.
func (r *Repository) ListHistory(ctx context.Context, limit int) ([]entities.Loan, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var loans []entities.Loan
	err := r.db.WithContext(ctx).
		Where("returned_at IS NOT NULL").
		Order("returned_at DESC, id DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}

// ListOverdue returns open loans whose due time is before now, oldest due first.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).
		Where("returned_at IS NULL AND due_at < ?", now).
		Order("due_at ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

// CountActiveForBook returns how many open loans reference the book.
func (r *Repository) CountActiveForBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Loan{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&count).Error
	return count, err
}

// CountActive returns the number of open loans.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Loan{}).
		Where("returned_at IS NULL").
		Count(&count).Error
	return count, err
}

// CountOverdue returns the number of open loans due before now.
func (r *Repository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Loan{}).
		Where("returned_at IS NULL AND due_at < ?", now).
		Count(&count).Error
	return count, err
}
