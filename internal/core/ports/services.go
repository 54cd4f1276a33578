package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"payment-event-pipeline/internal/core/domain"
)

// EventVerifier authenticates a provider notification and decodes its id and type.
type EventVerifier interface {
	Verify(rawBody []byte, signatureHeader string) (domain.VerifiedEvent, error)
}

// CanonicalRefetcher loads the authoritative, fully expanded provider object
// affected by an event.
type CanonicalRefetcher interface {
	Refetch(ctx context.Context, eventType, objectID string) (*domain.CanonicalPaymentObject, error)
}

// OrderLedger is the external order ledger's single idempotent upsert operation.
// Permanent refusals are returned as *domain.LedgerRejection.
type OrderLedger interface {
	UpsertOrderFromPayment(ctx context.Context, req domain.OrderUpsertRequest) (*domain.OrderUpsertResult, error)
}

// OutcomeCache is the Redis fast path for already finalized events.
type OutcomeCache interface {
	Get(ctx context.Context, providerEventID string) (*domain.PipelineResult, error) // nil on miss
	Set(ctx context.Context, result *domain.PipelineResult, ttl time.Duration) error
	Delete(ctx context.Context, providerEventID string) error
}

// ConfirmationMailer delivers the order confirmation message.
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, req domain.ConfirmationRequest) error
}

// ConfirmationService sends the confirmation for a processed order at most once.
type ConfirmationService interface {
	Confirm(ctx context.Context, req domain.ConfirmationRequest) error
}

// SignatureService signs outbound order ledger requests with HMAC-SHA256.
// Verification happens on the ledger side.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// TokenService handles operator JWT operations.
type TokenService interface {
	Generate(operatorID string, role string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OperatorID string
	Role       string
}

// AuditService records operator actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// PipelineService drives an inbound notification through the whole pipeline.
type PipelineService interface {
	Ingest(ctx context.Context, rawBody []byte, signatureHeader string) (*domain.PipelineResult, error)
}

// ReprocessService is the operator entry point into the pipeline.
type ReprocessService interface {
	Reprocess(ctx context.Context, req domain.ReprocessRequest) (*domain.PipelineResult, error)
	// Inspect accepts either a record id or a provider event id.
	Inspect(ctx context.Context, selector string) (*domain.WebhookEventRecord, error)
}
