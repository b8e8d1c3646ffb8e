// Package audit records who changed the inventory and when.
//
// Events are written in the background so that a slow audit insert never
// holds up a borrow or a return. Call Wait before closing the database.
package audit

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/simplelibrary/internal/database/audit"
	"github.com/mrlokans/simplelibrary/internal/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("Failed to log audit event")
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogBookEvent records a catalog change together with a snapshot of the book.
func (s *Service) LogBookEvent(action string, book *entities.Book, description string) {
	id := book.ID
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventBook,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "book",
		EntityID:    &id,
		Status:      entities.AuditStatusSuccess,
		Metadata: encodeMetadata(map[string]any{
			"title":            book.Title,
			"author":           book.Author,
			"isbn":             book.ISBNValue(),
			"copies_total":     book.CopiesTotal,
			"copies_available": book.CopiesAvailable,
		}),
	}

	s.LogAsync(event)
}

// LogLoanEvent records a borrow or a return.
func (s *Service) LogLoanEvent(action string, loan *entities.Loan, description string) {
	id := loan.ID
	metadata := map[string]any{
		"book_id":     loan.BookID,
		"borrower":    loan.Borrower,
		"borrowed_at": loan.BorrowedAt,
		"due_at":      loan.DueAt,
	}
	if loan.ReturnedAt != nil {
		metadata["returned_at"] = *loan.ReturnedAt
	}

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventLoan,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "loan",
		EntityID:    &id,
		Status:      entities.AuditStatusSuccess,
		Metadata:    encodeMetadata(metadata),
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events, optionally filtered by type.
func (s *Service) GetEvents(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, eventType, limit, offset)
}

// GetEventsForEntity returns the trail of one book or loan.
func (s *Service) GetEventsForEntity(ctx context.Context, entityType string, entityID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(ctx, entityType, entityID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func encodeMetadata(metadata map[string]any) string {
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens s to at most maxLen bytes without splitting a
// multi-byte character.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
