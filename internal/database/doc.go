// Package database opens the datastore and owns the schema.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (SQLite or PostgreSQL), migrations
//	├── books/           # Book catalog store
//	├── loans/           # Loan ledger
//	└── audit/           # Audit trail of inventory mutations
//
// # Using Sub-packages
//
// Each sub-package provides a Repository bound to a *gorm.DB. Pass a
// transaction handle to scope a repository to that transaction:
//
//	db, err := database.NewDatabase("./library.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	book, err := booksRepo.GetByID(ctx, 123)
//
//	err = db.DB.Transaction(func(tx *gorm.DB) error {
//	    _, err := books.NewRepository(tx).TakeCopy(ctx, 123)
//	    return err
//	})
//
// Copy counts are only changed through internal/inventory, which builds
// transaction-scoped repositories for every operation.
//
// # SQLite
//
// SQLite connections run in WAL mode with a busy timeout and take the write
// lock when a transaction begins, so concurrent writers queue instead of
// failing with SQLITE_BUSY halfway through a read-check-write sequence.
package database
