// Package reports is the read-only side of the library: dashboard
// aggregates and the lists shown on the books and loans pages.
//
// Nothing here is cached. Every call recomputes from the catalog and the
// ledger so that a page rendered right after a borrow reflects it.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/simplelibrary/internal/config"
	"github.com/mrlokans/simplelibrary/internal/database/books"
	"github.com/mrlokans/simplelibrary/internal/database/loans"
	"github.com/mrlokans/simplelibrary/internal/entities"
)

// SortBy selects the ordering of ListBooksSorted.
type SortBy string

const (
	SortNewest SortBy = "newest"
	SortTitle  SortBy = "title"
	SortAuthor SortBy = "author"
)

// ParseSortBy maps a query value to a SortBy; unknown values mean newest.
func ParseSortBy(s string) SortBy {
	switch SortBy(s) {
	case SortTitle, SortAuthor:
		return SortBy(s)
	default:
		return SortNewest
	}
}

// Dashboard holds the headline numbers.
type Dashboard struct {
	TotalBooks      int64 `json:"total_books"`
	AvailableCopies int64 `json:"available_copies"`
	ActiveLoans     int64 `json:"active_loans"`
	OverdueLoans    int64 `json:"overdue_loans"`
}

// LoanView is a loan with its book title resolved for display. BookTitle is
// empty when the book no longer exists.
type LoanView struct {
	entities.Loan
	BookTitle string              `json:"book_title"`
	Status    entities.LoanStatus `json:"status"`
	Overdue   bool                `json:"overdue"`
}

type Config struct {
	// Dialect is the goqu dialect name, "sqlite3" or "postgres".
	Dialect      string
	HistoryLimit int
	Now          func() time.Time
}

type Facade struct {
	db           *gorm.DB
	dialect      goqu.DialectWrapper
	books        *books.Repository
	loans        *loans.Repository
	historyLimit int
	now          func() time.Time
}

func NewFacade(db *gorm.DB, cfg Config) *Facade {
	f := &Facade{
		db:           db,
		dialect:      goqu.Dialect(cfg.Dialect),
		books:        books.NewRepository(db),
		loans:        loans.NewRepository(db),
		historyLimit: cfg.HistoryLimit,
		now:          cfg.Now,
	}
	if cfg.Dialect == "" {
		f.dialect = goqu.Dialect("sqlite3")
	}
	if f.historyLimit <= 0 {
		f.historyLimit = config.DefaultHistoryLimit
	}
	if f.now == nil {
		f.now = func() time.Time { return time.Now().UTC() }
	}
	return f
}

// Dashboard computes the aggregates with two statements: one over books and
// one over open loans.
func (f *Facade) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard

	bookQuery, bookArgs, err := f.bookAggregatesSQL()
	if err != nil {
		return d, fmt.Errorf("build book aggregates: %w", err)
	}
	loanQuery, loanArgs, err := f.loanAggregatesSQL(f.now())
	if err != nil {
		return d, fmt.Errorf("build loan aggregates: %w", err)
	}

	sqlDB, err := f.db.DB()
	if err != nil {
		return d, err
	}
	if err := sqlDB.QueryRowContext(ctx, bookQuery, bookArgs...).Scan(&d.TotalBooks, &d.AvailableCopies); err != nil {
		return d, fmt.Errorf("query book aggregates: %w", err)
	}
	if err := sqlDB.QueryRowContext(ctx, loanQuery, loanArgs...).Scan(&d.ActiveLoans, &d.OverdueLoans); err != nil {
		return d, fmt.Errorf("query loan aggregates: %w", err)
	}
	return d, nil
}

func (f *Facade) bookAggregatesSQL() (string, []any, error) {
	return f.dialect.From("books").Prepared(true).Select(
		goqu.COUNT(goqu.Star()).As("total_books"),
		goqu.COALESCE(goqu.SUM("copies_available"), goqu.L("0")).As("available_copies"),
	).ToSQL()
}

func (f *Facade) loanAggregatesSQL(now time.Time) (string, []any, error) {
	return f.dialect.From("loans").Prepared(true).Select(
		goqu.COUNT(goqu.Star()).As("active_loans"),
		goqu.COALESCE(goqu.SUM(
			goqu.Case().When(goqu.C("due_at").Lt(now), goqu.L("1")).Else(goqu.L("0")),
		), goqu.L("0")).As("overdue_loans"),
	).Where(goqu.C("returned_at").IsNull()).ToSQL()
}

// ListBooksSorted returns every book in the requested order.
func (f *Facade) ListBooksSorted(ctx context.Context, by SortBy) ([]entities.Book, error) {
	var order string
	switch by {
	case SortTitle:
		order = "title ASC, id ASC"
	case SortAuthor:
		order = "author ASC, title ASC, id ASC"
	default:
		return f.books.List(ctx)
	}

	var result []entities.Book
	err := f.db.WithContext(ctx).Order(order).Find(&result).Error
	return result, err
}

// Book returns a single book.
func (f *Facade) Book(ctx context.Context, id uint) (*entities.Book, error) {
	return f.books.GetByID(ctx, id)
}

// ActiveLoans returns open loans, most recently borrowed first.
func (f *Facade) ActiveLoans(ctx context.Context) ([]LoanView, error) {
	list, err := f.loans.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return f.views(ctx, list)
}

// LoanHistory returns returned loans, most recently returned first. A
// non-positive limit uses the configured history limit.
func (f *Facade) LoanHistory(ctx context.Context, limit int) ([]LoanView, error) {
	if limit <= 0 {
		limit = f.historyLimit
	}
	list, err := f.loans.ListHistory(ctx, limit)
	if err != nil {
		return nil, err
	}
	return f.views(ctx, list)
}

// OverdueLoans returns open loans past their due time, oldest due first.
func (f *Facade) OverdueLoans(ctx context.Context) ([]LoanView, error) {
	list, err := f.loans.ListOverdue(ctx, f.now())
	if err != nil {
		return nil, err
	}
	return f.views(ctx, list)
}

// Loan returns a single loan view.
func (f *Facade) Loan(ctx context.Context, id uint) (*LoanView, error) {
	loan, err := f.loans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := f.views(ctx, []entities.Loan{*loan})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves book titles with one lookup for the whole page.
func (f *Facade) views(ctx context.Context, list []entities.Loan) ([]LoanView, error) {
	ids := make([]uint, 0, len(list))
	seen := make(map[uint]struct{}, len(list))
	for _, l := range list {
		if _, ok := seen[l.BookID]; ok {
			continue
		}
		seen[l.BookID] = struct{}{}
		ids = append(ids, l.BookID)
	}

	byID, err := f.books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := f.now()
	views := make([]LoanView, 0, len(list))
	for _, l := range list {
		views = append(views, LoanView{
			Loan:      l,
			BookTitle: byID[l.BookID].Title,
			Status:    l.Status(now),
			Overdue:   l.IsOverdue(now),
		})
	}
	return views, nil
}
