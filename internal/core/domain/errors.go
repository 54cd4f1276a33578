package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSignature means the caller sent no signature header at all.
	ErrMissingSignature = errors.New("missing signature header")
	// ErrInvalidSignature covers signature mismatch, stale timestamps and malformed bodies.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrConfiguration is a deployment defect. It must never be retried silently.
	ErrConfiguration = errors.New("configuration error")

	ErrNotFoundUpstream     = errors.New("object not found at provider")
	ErrProviderTransient    = errors.New("provider temporarily unavailable")
	ErrProviderRejected     = errors.New("provider rejected request")
	ErrUnsupportedEventType = errors.New("unsupported event type")
	ErrMissingExpansions    = errors.New("canonical object is missing required expansions")

	ErrLedgerTransient = errors.New("order ledger temporarily unavailable")

	ErrEventNotFound = errors.New("webhook event not found")
	ErrOrderNotFound = errors.New("order not found")
)

// LedgerRejection is a permanent refusal by the order ledger's business rules.
type LedgerRejection struct {
	Code   string
	Reason string
}

func (e *LedgerRejection) Error() string {
	return fmt.Sprintf("order ledger rejected upsert: %s: %s", e.Code, e.Reason)
}
