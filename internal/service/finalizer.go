package service

import (
	"context"
	"fmt"
	"time"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"

	"github.com/rs/zerolog"
)

// Finalizer applies an outcome to the idempotency ledger.
type Finalizer struct {
	events  ports.WebhookEventRepository
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewFinalizer creates a Finalizer whose writes are bounded by timeout.
func NewFinalizer(events ports.WebhookEventRepository, timeout time.Duration, log zerolog.Logger) *Finalizer {
	return &Finalizer{events: events, timeout: timeout, now: time.Now, log: log}
}

// Apply records outcome on rec and returns the stored record afterwards.
// The write runs on a context detached from ctx, so an expired run deadline
// cannot drop it.
func (f *Finalizer) Apply(ctx context.Context, rec *domain.WebhookEventRecord, outcome domain.Outcome, opts domain.FinalizeOptions) (*domain.WebhookEventRecord, error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	at := f.now()
	var err error
	switch outcome.Kind {
	case domain.OutcomeProcessed:
		err = f.events.MarkProcessed(wctx, rec.ProviderEventID, outcome.OrderID, at, opts)
	case domain.OutcomeIgnored:
		err = f.applyIgnored(wctx, rec, outcome, at, opts)
	case domain.OutcomeErrorTransient, domain.OutcomeErrorFatal:
		msg := outcome.Detail
		if msg == "" {
			msg = outcome.Reason
		}
		err = f.events.MarkAttemptFailed(wctx, rec.ProviderEventID, domain.LastError{
			Kind:    outcome.Kind,
			Code:    outcome.Reason,
			Message: msg,
			At:      at,
		}, opts)
	default:
		return nil, fmt.Errorf("finalize webhook event: unknown outcome kind %q", outcome.Kind)
	}
	if err != nil {
		f.log.Error().Err(err).
			Str("event_id", rec.ProviderEventID).
			Str("outcome", string(outcome.Kind)).
			Msg("finalize: write failed")
		return nil, fmt.Errorf("finalize webhook event: %w", err)
	}

	stored, err := f.events.Lookup(wctx, rec.ProviderEventID)
	if err != nil {
		f.log.Error().Err(err).Str("event_id", rec.ProviderEventID).Msg("finalize: re-read failed")
		return nil, fmt.Errorf("finalize webhook event: %w", err)
	}
	if stored == nil {
		return nil, domain.ErrEventNotFound
	}
	return stored, nil
}

// applyIgnored never moves a processed record to ignored. A forced run that
// now ignores such a record is kept as the last error and the order link stays.
func (f *Finalizer) applyIgnored(ctx context.Context, rec *domain.WebhookEventRecord, outcome domain.Outcome, at time.Time, opts domain.FinalizeOptions) error {
	if opts.Override {
		cur, err := f.events.Lookup(ctx, rec.ProviderEventID)
		if err != nil {
			return err
		}
		if cur != nil && cur.State() == domain.EventStateProcessed {
			f.log.Warn().
				Str("event_id", rec.ProviderEventID).
				Str("reason", outcome.Reason).
				Msg("finalize: forced run ignored a processed event, keeping processed state")
			return f.events.MarkAttemptFailed(ctx, rec.ProviderEventID, domain.LastError{
				Kind:    domain.OutcomeIgnored,
				Code:    outcome.Reason,
				Message: "forced re-run ignored the event; processed state kept",
				At:      at,
			}, opts)
		}
	}
	return f.events.MarkIgnored(ctx, rec.ProviderEventID, outcome.Reason, at, opts)
}
