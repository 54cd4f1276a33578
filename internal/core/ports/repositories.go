package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"payment-event-pipeline/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookEventRepository is the idempotency ledger: one row per provider event id.
// Every conditional write checks rows affected instead of reading first.
type WebhookEventRepository interface {
	// Lookup returns nil, nil when the event has never been seen.
	Lookup(ctx context.Context, providerEventID string) (*domain.WebhookEventRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEventRecord, error)
	// RecordReceived inserts rec or, if the provider event id already exists,
	// returns the existing row. It never fails on a duplicate.
	RecordReceived(ctx context.Context, rec *domain.WebhookEventRecord) (*domain.WebhookEventRecord, error)
	MarkProcessed(ctx context.Context, providerEventID, orderID string, at time.Time, opts domain.FinalizeOptions) error
	MarkIgnored(ctx context.Context, providerEventID, reason string, at time.Time, opts domain.FinalizeOptions) error
	MarkAttemptFailed(ctx context.Context, providerEventID string, lastErr domain.LastError, opts domain.FinalizeOptions) error
	// AcquireLease returns true if the caller now owns the attempt lease.
	AcquireLease(ctx context.Context, providerEventID, owner string, now, expiresAt time.Time, opts domain.FinalizeOptions) (bool, error)
	ReleaseLease(ctx context.Context, providerEventID, owner string) error
	NoteReprocess(ctx context.Context, providerEventID, operator string, at time.Time) error
}

// SideEffectClaimRepository implements the at-most-once claim on an order's own row.
type SideEffectClaimRepository interface {
	Claim(ctx context.Context, orderID string, effect domain.SideEffect) (domain.ClaimResult, error)
	MarkDelivered(ctx context.Context, orderID string, effect domain.SideEffect) error
	MarkDeliveryFailed(ctx context.Context, orderID string, effect domain.SideEffect, cause string) error
}

// AuditRepository persists operator audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
