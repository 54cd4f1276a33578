// Package memory holds mutex-guarded stores with the same conditional-write
// semantics as the PostgreSQL repositories. They back the service tests and
// the end-to-end pipeline tests; cmd/api always runs on PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"payment-event-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookEventStore implements ports.WebhookEventRepository in memory.
type WebhookEventStore struct {
	mu      sync.Mutex
	byEvent map[string]*domain.WebhookEventRecord
	byID    map[uuid.UUID]string
}

func NewWebhookEventStore() *WebhookEventStore {
	return &WebhookEventStore{
		byEvent: make(map[string]*domain.WebhookEventRecord),
		byID:    make(map[uuid.UUID]string),
	}
}

func (s *WebhookEventStore) Lookup(ctx context.Context, providerEventID string) (*domain.WebhookEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEvent[providerEventID]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

func (s *WebhookEventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventID, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneRecord(s.byEvent[eventID]), nil
}

func (s *WebhookEventStore) RecordReceived(ctx context.Context, rec *domain.WebhookEventRecord) (*domain.WebhookEventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byEvent[rec.ProviderEventID]; ok {
		return cloneRecord(existing), nil
	}
	stored := cloneRecord(rec)
	s.byEvent[rec.ProviderEventID] = stored
	s.byID[rec.ID] = rec.ProviderEventID
	return cloneRecord(stored), nil
}

func (s *WebhookEventStore) MarkProcessed(ctx context.Context, providerEventID, orderID string, at time.Time, opts domain.FinalizeOptions) error {
	return s.guarded(providerEventID, opts, func(rec *domain.WebhookEventRecord) {
		state := domain.EventStateProcessed
		rec.FinalizedAt = &at
		rec.FinalState = &state
		rec.LinkedOrderID = &orderID
		rec.OutcomeReason = nil
		rec.LeaseOwner = nil
		rec.LeaseExpiresAt = nil
		rec.UpdatedAt = at
	})
}

func (s *WebhookEventStore) MarkIgnored(ctx context.Context, providerEventID, reason string, at time.Time, opts domain.FinalizeOptions) error {
	return s.guarded(providerEventID, opts, func(rec *domain.WebhookEventRecord) {
		if rec.State() == domain.EventStateProcessed {
			return
		}
		state := domain.EventStateIgnored
		rec.FinalizedAt = &at
		rec.FinalState = &state
		rec.OutcomeReason = &reason
		rec.LinkedOrderID = nil
		rec.LeaseOwner = nil
		rec.LeaseExpiresAt = nil
		rec.UpdatedAt = at
	})
}

func (s *WebhookEventStore) MarkAttemptFailed(ctx context.Context, providerEventID string, lastErr domain.LastError, opts domain.FinalizeOptions) error {
	return s.guarded(providerEventID, opts, func(rec *domain.WebhookEventRecord) {
		le := lastErr
		rec.LastError = &le
		rec.AttemptCount++
		rec.UpdatedAt = lastErr.At
	})
}

func (s *WebhookEventStore) AcquireLease(ctx context.Context, providerEventID, owner string, now, expiresAt time.Time, opts domain.FinalizeOptions) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEvent[providerEventID]
	if !ok {
		return false, nil
	}
	if rec.FinalizedAt != nil && !opts.Override {
		return false, nil
	}
	if rec.LeaseExpiresAt != nil && !rec.LeaseExpiresAt.Before(now) {
		return false, nil
	}
	rec.LeaseOwner = &owner
	rec.LeaseExpiresAt = &expiresAt
	rec.UpdatedAt = now
	return true, nil
}

func (s *WebhookEventStore) ReleaseLease(ctx context.Context, providerEventID, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEvent[providerEventID]
	if !ok || rec.LeaseOwner == nil || *rec.LeaseOwner != owner {
		return nil
	}
	rec.LeaseOwner = nil
	rec.LeaseExpiresAt = nil
	return nil
}

func (s *WebhookEventStore) NoteReprocess(ctx context.Context, providerEventID, operator string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEvent[providerEventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	rec.ReprocessCount++
	rec.LastReprocessedBy = &operator
	rec.LastReprocessedAt = &at
	rec.UpdatedAt = at
	return nil
}

// guarded applies fn unless the record is terminal and no override is set.
func (s *WebhookEventStore) guarded(providerEventID string, opts domain.FinalizeOptions, fn func(*domain.WebhookEventRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byEvent[providerEventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if rec.FinalizedAt != nil && !opts.Override {
		return nil
	}
	fn(rec)
	return nil
}

func cloneRecord(r *domain.WebhookEventRecord) *domain.WebhookEventRecord {
	c := *r
	if r.RawPayload != nil {
		c.RawPayload = append([]byte(nil), r.RawPayload...)
	}
	if r.LastError != nil {
		le := *r.LastError
		c.LastError = &le
	}
	c.FinalizedAt = copyPtr(r.FinalizedAt)
	c.FinalState = copyPtr(r.FinalState)
	c.OutcomeReason = copyPtr(r.OutcomeReason)
	c.LinkedOrderID = copyPtr(r.LinkedOrderID)
	c.LastReprocessedBy = copyPtr(r.LastReprocessedBy)
	c.LastReprocessedAt = copyPtr(r.LastReprocessedAt)
	c.LeaseOwner = copyPtr(r.LeaseOwner)
	c.LeaseExpiresAt = copyPtr(r.LeaseExpiresAt)
	return &c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
