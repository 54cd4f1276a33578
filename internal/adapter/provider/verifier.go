package provider

import (
	"fmt"
	"strings"
	"time"

	"payment-event-pipeline/internal/core/domain"

	"github.com/stripe/stripe-go/v79/webhook"
)

// Verifier authenticates Stripe webhook deliveries with the endpoint secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

// NewVerifier creates a Verifier. An empty secret is accepted here and
// reported as domain.ErrConfiguration on every Verify call.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

// Verify checks the Stripe-Signature header against rawBody and decodes only
// the event id, type and affected object id.
func (v *Verifier) Verify(rawBody []byte, signatureHeader string) (domain.VerifiedEvent, error) {
	if v.secret == "" {
		return domain.VerifiedEvent{}, fmt.Errorf("%w: webhook secret is not set", domain.ErrConfiguration)
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return domain.VerifiedEvent{}, domain.ErrMissingSignature
	}

	evt, err := webhook.ConstructEventWithOptions(rawBody, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.VerifiedEvent{}, fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	}

	if evt.ID == "" || evt.Type == "" {
		return domain.VerifiedEvent{}, fmt.Errorf("%w: event id or type missing", domain.ErrInvalidSignature)
	}

	var objectID string
	if evt.Data != nil {
		objectID, _ = evt.Data.Object["id"].(string)
	}
	if objectID == "" {
		return domain.VerifiedEvent{}, fmt.Errorf("%w: event object id missing", domain.ErrInvalidSignature)
	}

	return domain.VerifiedEvent{
		ID:         evt.ID,
		Type:       string(evt.Type),
		ObjectID:   objectID,
		RawPayload: rawBody,
	}, nil
}
