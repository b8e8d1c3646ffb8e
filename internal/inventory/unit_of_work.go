package inventory

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/simplelibrary/internal/database/books"
	"github.com/mrlokans/simplelibrary/internal/database/loans"
	"github.com/mrlokans/simplelibrary/internal/entities"
)

// BookStore is the part of the catalog store the coordinator writes through.
type BookStore interface {
	Create(ctx context.Context, book *entities.Book) error
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*entities.Book, error)
	Save(ctx context.Context, book *entities.Book) error
	TakeCopy(ctx context.Context, id uint) (bool, error)
	ReturnCopy(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// LoanLedger is the part of the loan ledger the coordinator writes through.
type LoanLedger interface {
	Create(ctx context.Context, loan *entities.Loan) error
	GetByID(ctx context.Context, id uint) (*entities.Loan, error)
	MarkReturned(ctx context.Context, id uint, at time.Time) error
	CountActiveForBook(ctx context.Context, bookID uint) (int64, error)
}

// Stores are the transaction-scoped stores handed to a unit of work.
type Stores struct {
	Books BookStore
	Loans LoanLedger
}

// UnitOfWork runs fn atomically. Any error returned by fn rolls back every
// write made through the given stores.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Stores) error) error
}

// GormUnitOfWork opens a gorm transaction per call and builds repositories
// bound to it.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Books: books.NewRepository(tx),
			Loans: loans.NewRepository(tx),
		})
	})
}
