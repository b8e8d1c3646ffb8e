package http

import (
	"context"

	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/inventory"
	"github.com/mrlokans/simplelibrary/internal/reports"
)

// This file consolidates the service interfaces used by HTTP controllers.
// Writes go through Inventory, reads through Reports.

// Inventory is the write side of the library. Implemented by
// *inventory.Coordinator.
type Inventory interface {
	AddBook(ctx context.Context, in inventory.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, bookID uint, patch inventory.BookPatch) (*entities.Book, error)
	DeleteBook(ctx context.Context, bookID uint) error
	Borrow(ctx context.Context, bookID uint, borrower string, days int) (*entities.Loan, error)
	Return(ctx context.Context, loanID uint) (*entities.Loan, error)
	DefaultLoanDays() int
}

// Reports is the read side. Implemented by *reports.Facade.
type Reports interface {
	Dashboard(ctx context.Context) (reports.Dashboard, error)
	ListBooksSorted(ctx context.Context, by reports.SortBy) ([]entities.Book, error)
	Book(ctx context.Context, id uint) (*entities.Book, error)
	ActiveLoans(ctx context.Context) ([]reports.LoanView, error)
	LoanHistory(ctx context.Context, limit int) ([]reports.LoanView, error)
	OverdueLoans(ctx context.Context) ([]reports.LoanView, error)
	Loan(ctx context.Context, id uint) (*reports.LoanView, error)
}

// AuditReader lists recorded inventory events. Implemented by *audit.Service.
type AuditReader interface {
	GetEvents(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsForEntity(ctx context.Context, entityType string, entityID uint) ([]entities.AuditEvent, error)
}
