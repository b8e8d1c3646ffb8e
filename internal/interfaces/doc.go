// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage Interfaces
//
//   - BookStore: Catalog rows, including the guarded copy counters (internal/inventory/unit_of_work.go)
//   - LoanLedger: Loan rows and the active-loan count per book (internal/inventory/unit_of_work.go)
//   - UnitOfWork: Runs a function against stores bound to one transaction (internal/inventory/unit_of_work.go)
//
// ## Controller Interfaces
//
//   - Inventory: Every write against books and loans (internal/http/stores.go)
//   - Reports: Dashboard numbers and lists (internal/http/stores.go)
//   - AuditReader: Recorded inventory events (internal/http/stores.go)
//   - Pinger: Database health (internal/http/health.go)
//   - TaskStatuser, AuditCleanupRunner: Task queue endpoints (internal/http/tasks.go)
//
// ## Background Interfaces
//
//   - AuditLogger: Receives committed inventory changes (internal/inventory/coordinator.go)
//   - AuditEventCleaner: Retention cleanup target (internal/tasks/cleanup_audit.go)
//   - Enqueuer: Where the cron scheduler puts cleanup tasks (internal/scheduler/audit_cleanup.go)
//
// # Changing Copy Counts
//
// Only inventory.Coordinator changes Book.CopiesAvailable. A new operation that
// touches copies belongs on the coordinator and runs inside UnitOfWork.Do so
// the book row and the loan row commit together:
//
//	err := c.uow.Do(ctx, func(s Stores) error {
//	    book, err := s.Books.GetByIDForUpdate(ctx, id)
//	    ...
//	    return s.Books.Save(ctx, book)
//	})
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entity in database.Open's AutoMigrate list
//
//  4. Add compile-time check in checks.go:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
