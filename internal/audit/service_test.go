package audit

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/simplelibrary/internal/database/audit"
	"github.com/mrlokans/simplelibrary/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB, func()) {
	dbPath := "./test_audit_service_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	svc := NewService(auditRepo.NewRepository(db))

	cleanup := func() {
		svc.Wait()
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return svc, db, cleanup
}

func TestService_Log(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBook,
		Action:      "test_action",
		Description: "Test event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(context.Background(), event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "test_action", saved.Action)
}

func TestService_LogBookEvent(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	isbn := "978-0441013593"
	book := &entities.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", ISBN: &isbn, CopiesTotal: 2, CopiesAvailable: 1}
	svc.LogBookEvent(entities.AuditActionBookUpdate, book, "Updated \"Dune\"")
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", entities.AuditActionBookUpdate).First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, entities.AuditEventBook, event.EventType)
	assert.Equal(t, "book", event.EntityType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(3), *event.EntityID)

	var metadata map[string]any
	require.NoError(t, jsoniter.UnmarshalFromString(event.Metadata, &metadata))
	assert.Equal(t, "Dune", metadata["title"])
	assert.Equal(t, isbn, metadata["isbn"])
	assert.EqualValues(t, 1, metadata["copies_available"])
}

func TestService_LogBookEvent_LongMultiByteTitle(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	title := strings.Repeat("ệ", 85)
	author := strings.Repeat("ệ", 85)
	book := &entities.Book{ID: 4, Title: title, Author: author, CopiesTotal: 1, CopiesAvailable: 1}
	svc.LogBookEvent(entities.AuditActionBookAdd, book, "Added \""+title+"\" by "+author)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("entity_id = ?", 4).First(&event).Error)
	assert.LessOrEqual(t, len(event.Description), 500)
	assert.True(t, utf8.ValidString(event.Description))
	assert.True(t, strings.HasSuffix(event.Description, "..."))
}

func TestService_LogLoanEvent(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	borrowed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	returned := borrowed.Add(24 * time.Hour)

	t.Run("borrow", func(t *testing.T) {
		loan := &entities.Loan{ID: 10, BookID: 3, Borrower: "Ann", BorrowedAt: borrowed, DueAt: borrowed.AddDate(0, 0, 7)}
		svc.LogLoanEvent(entities.AuditActionLoanBorrow, loan, "Ann borrowed book #3")
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", entities.AuditActionLoanBorrow).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditEventLoan, event.EventType)
		assert.Contains(t, event.Metadata, `"borrower":"Ann"`)
		assert.NotContains(t, event.Metadata, "returned_at")
	})

	t.Run("return", func(t *testing.T) {
		loan := &entities.Loan{ID: 10, BookID: 3, Borrower: "Ann", BorrowedAt: borrowed, DueAt: borrowed.AddDate(0, 0, 7), ReturnedAt: &returned}
		svc.LogLoanEvent(entities.AuditActionLoanReturn, loan, "Ann returned book #3")
		svc.Wait()

		events, err := svc.GetEventsForEntity(context.Background(), "loan", 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, entities.AuditActionLoanReturn, events[1].Action)
		assert.Contains(t, events[1].Metadata, "returned_at")
	})
}

func TestService_GetEvents(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.LogBookEvent(entities.AuditActionBookAdd, &entities.Book{ID: uint(i + 1), Title: "T", Author: "A"}, "added")
	}
	svc.LogLoanEvent(entities.AuditActionLoanBorrow, &entities.Loan{ID: 1, BookID: 1, Borrower: "Ann"}, "borrowed")
	svc.Wait()

	events, total, err := svc.GetEvents(ctx, entities.AuditEventBook, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, events, 2)

	_, total, err = svc.GetEvents(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	old := &entities.AuditEvent{
		EventType: entities.AuditEventLoan,
		Action:    "old_event",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().UTC().Add(-100 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(old).Error)

	recent := &entities.AuditEvent{
		EventType: entities.AuditEventLoan,
		Action:    "recent_event",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(ctx, recent))

	deleted, err := svc.DeleteOldEvents(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&entities.AuditEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"ệệệệ", 8, "ệ..."},
		{"aệệệ", 8, "aệ..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen))
		})
	}
}
