// Package books is the book catalog store.
//
// The repository validates and persists book records. It never decides how
// copy counts change; the inventory coordinator computes new counts and calls
// Save, TakeCopy or ReturnCopy inside its transaction.
//
// # Usage
//
//	repo := books.NewRepository(tx)
//	book, err := repo.GetByID(ctx, 123)
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/simplelibrary/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository. Pass a transaction handle to
// scope every call to that transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book with all copies available.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	book.CopiesAvailable = book.CopiesTotal
	if err := book.Validate(); err != nil {
		return entities.NewValidationError(err)
	}
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate retrieves a book and locks its row until the transaction
// ends. SQLite has no row locks; the clause is dropped by its dialector.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uint) (*entities.Book, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) get(db *gorm.DB, id uint) (*entities.Book, error) {
	var book entities.Book
	err := db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByIDs returns the books with the given IDs keyed by ID. Missing IDs are
// simply absent from the map.
func (r *Repository) GetByIDs(ctx context.Context, ids []uint) (map[uint]entities.Book, error) {
	result := make(map[uint]entities.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var books []entities.Book
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	for _, b := range books {
		result[b.ID] = b
	}
	return result, nil
}

// List returns every book, newest first.
func (r *Repository) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("id DESC").Find(&books).Error
	return books, err
}

// Save persists an edited book after validating it.
func (r *Repository) Save(ctx context.Context, book *entities.Book) error {
	if err := book.Validate(); err != nil {
		return entities.NewValidationError(err)
	}
	return r.db.WithContext(ctx).Save(book).Error
}

// TakeCopy decrements copies_available if a copy is left. It reports false
// when the book had no available copy at the time of the update.
func (r *Repository) TakeCopy(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND copies_available > 0", id).
		UpdateColumn("copies_available", gorm.Expr("copies_available - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReturnCopy increments copies_available, never past copies_total.
func (r *Repository) ReturnCopy(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", id).
		UpdateColumn("copies_available", gorm.Expr(
			"CASE WHEN copies_available + 1 > copies_total THEN copies_total ELSE copies_available + 1 END",
		))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrBookNotFound
	}
	return nil
}

// Delete removes a book permanently.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrBookNotFound
	}
	return nil
}
