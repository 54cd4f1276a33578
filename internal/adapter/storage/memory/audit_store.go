package memory

import (
	"context"
	"sync"

	"payment-event-pipeline/internal/core/domain"
)

// AuditStore implements ports.AuditRepository in memory.
type AuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Create(ctx context.Context, log *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *log)
	return nil
}

// Entries returns a snapshot of everything recorded so far.
func (s *AuditStore) Entries() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditLog(nil), s.entries...)
}
