package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-event-pipeline/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const webhookEventColumns = `id, provider_event_id, event_type, object_id, raw_payload, received_at,
	finalized_at, final_state, outcome_reason, linked_order_id,
	last_error_kind, last_error_code, last_error_message, last_error_at,
	attempt_count, reprocess_count, last_reprocessed_by, last_reprocessed_at,
	lease_owner, lease_expires_at, updated_at`

// WebhookEventRepo implements ports.WebhookEventRepository.
// Terminal rows are protected in SQL: every finalize statement carries
// "finalized_at IS NULL OR <override>" and the caller inspects rows affected.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Lookup fetches a record by provider event id. Returns nil, nil when absent.
func (r *WebhookEventRepo) Lookup(ctx context.Context, providerEventID string) (*domain.WebhookEventRecord, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE provider_event_id = $1`

	rec, err := scanWebhookEvent(r.pool.QueryRow(ctx, query, providerEventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup webhook event: %w", err)
	}
	return rec, nil
}

// GetByID fetches a record by its internal id. Returns nil, nil when absent.
func (r *WebhookEventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookEventRecord, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE id = $1`

	rec, err := scanWebhookEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event by id: %w", err)
	}
	return rec, nil
}

// RecordReceived inserts rec unless the provider event id already exists, in
// which case the stored row wins and is returned instead.
func (r *WebhookEventRepo) RecordReceived(ctx context.Context, rec *domain.WebhookEventRecord) (*domain.WebhookEventRecord, error) {
	query := `INSERT INTO webhook_events (id, provider_event_id, event_type, object_id, raw_payload, received_at, attempt_count, reprocess_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7)
		ON CONFLICT (provider_event_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		rec.ID, rec.ProviderEventID, rec.EventType, rec.ObjectID,
		rec.RawPayload, rec.ReceivedAt, rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert webhook event: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return rec, nil
	}

	existing, err := r.Lookup(ctx, rec.ProviderEventID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("insert webhook event: conflicting row for %s vanished", rec.ProviderEventID)
	}
	return existing, nil
}

// MarkProcessed finalizes the record as processed and links the order.
func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, providerEventID, orderID string, at time.Time, opts domain.FinalizeOptions) error {
	query := `UPDATE webhook_events
		SET finalized_at = $2, final_state = 'processed', linked_order_id = $3, outcome_reason = NULL,
			lease_owner = NULL, lease_expires_at = NULL, updated_at = $2
		WHERE provider_event_id = $1 AND (finalized_at IS NULL OR $4)`

	tag, err := r.pool.Exec(ctx, query, providerEventID, at, orderID, opts.Override)
	if err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return r.checkGuardedWrite(ctx, providerEventID, tag.RowsAffected())
}

// MarkIgnored finalizes the record as ignored with an audit reason.
// Even with override a processed row is left alone.
func (r *WebhookEventRepo) MarkIgnored(ctx context.Context, providerEventID, reason string, at time.Time, opts domain.FinalizeOptions) error {
	query := `UPDATE webhook_events
		SET finalized_at = $2, final_state = 'ignored', outcome_reason = $3, linked_order_id = NULL,
			lease_owner = NULL, lease_expires_at = NULL, updated_at = $2
		WHERE provider_event_id = $1
			AND (finalized_at IS NULL OR ($4 AND final_state <> 'processed'))`

	tag, err := r.pool.Exec(ctx, query, providerEventID, at, reason, opts.Override)
	if err != nil {
		return fmt.Errorf("mark webhook event ignored: %w", err)
	}
	return r.checkGuardedWrite(ctx, providerEventID, tag.RowsAffected())
}

// MarkAttemptFailed overwrites the last error and counts the attempt.
// finalized_at is never touched, so the record stays retryable.
func (r *WebhookEventRepo) MarkAttemptFailed(ctx context.Context, providerEventID string, lastErr domain.LastError, opts domain.FinalizeOptions) error {
	query := `UPDATE webhook_events
		SET last_error_kind = $2, last_error_code = $3, last_error_message = $4, last_error_at = $5,
			attempt_count = attempt_count + 1, updated_at = $5
		WHERE provider_event_id = $1 AND (finalized_at IS NULL OR $6)`

	tag, err := r.pool.Exec(ctx, query,
		providerEventID, string(lastErr.Kind), lastErr.Code, lastErr.Message, lastErr.At, opts.Override,
	)
	if err != nil {
		return fmt.Errorf("mark webhook event attempt failed: %w", err)
	}
	return r.checkGuardedWrite(ctx, providerEventID, tag.RowsAffected())
}

// AcquireLease claims the attempt lease if it is free or expired.
// It returns false when someone else holds it, the record is terminal
// (without override) or the record does not exist.
func (r *WebhookEventRepo) AcquireLease(ctx context.Context, providerEventID, owner string, now, expiresAt time.Time, opts domain.FinalizeOptions) (bool, error) {
	query := `UPDATE webhook_events
		SET lease_owner = $2, lease_expires_at = $3, updated_at = $4
		WHERE provider_event_id = $1
			AND (finalized_at IS NULL OR $5)
			AND (lease_expires_at IS NULL OR lease_expires_at < $4)`

	tag, err := r.pool.Exec(ctx, query, providerEventID, owner, expiresAt, now, opts.Override)
	if err != nil {
		return false, fmt.Errorf("acquire webhook event lease: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseLease drops the lease if owner still holds it.
func (r *WebhookEventRepo) ReleaseLease(ctx context.Context, providerEventID, owner string) error {
	query := `UPDATE webhook_events
		SET lease_owner = NULL, lease_expires_at = NULL
		WHERE provider_event_id = $1 AND lease_owner = $2`

	if _, err := r.pool.Exec(ctx, query, providerEventID, owner); err != nil {
		return fmt.Errorf("release webhook event lease: %w", err)
	}
	return nil
}

// NoteReprocess records which operator re-drove the event and when.
func (r *WebhookEventRepo) NoteReprocess(ctx context.Context, providerEventID, operator string, at time.Time) error {
	query := `UPDATE webhook_events
		SET reprocess_count = reprocess_count + 1, last_reprocessed_by = $2, last_reprocessed_at = $3, updated_at = $3
		WHERE provider_event_id = $1`

	tag, err := r.pool.Exec(ctx, query, providerEventID, operator, at)
	if err != nil {
		return fmt.Errorf("note webhook event reprocess: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// checkGuardedWrite tells a terminal row (no-op) apart from a missing one.
func (r *WebhookEventRepo) checkGuardedWrite(ctx context.Context, providerEventID string, affected int64) error {
	if affected > 0 {
		return nil
	}
	rec, err := r.Lookup(ctx, providerEventID)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrEventNotFound
	}
	return nil
}

func scanWebhookEvent(row pgx.Row) (*domain.WebhookEventRecord, error) {
	var (
		rec        domain.WebhookEventRecord
		finalState *string
		errKind    *string
		errCode    *string
		errMessage *string
		errAt      *time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.ProviderEventID, &rec.EventType, &rec.ObjectID, &rec.RawPayload, &rec.ReceivedAt,
		&rec.FinalizedAt, &finalState, &rec.OutcomeReason, &rec.LinkedOrderID,
		&errKind, &errCode, &errMessage, &errAt,
		&rec.AttemptCount, &rec.ReprocessCount, &rec.LastReprocessedBy, &rec.LastReprocessedAt,
		&rec.LeaseOwner, &rec.LeaseExpiresAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if finalState != nil {
		s := domain.EventState(*finalState)
		rec.FinalState = &s
	}
	if errKind != nil && errAt != nil {
		rec.LastError = &domain.LastError{
			Kind: domain.OutcomeKind(*errKind),
			At:   *errAt,
		}
		if errCode != nil {
			rec.LastError.Code = *errCode
		}
		if errMessage != nil {
			rec.LastError.Message = *errMessage
		}
	}
	return &rec, nil
}
