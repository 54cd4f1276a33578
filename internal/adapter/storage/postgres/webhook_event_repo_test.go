package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-event-pipeline/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var webhookEventColumnNames = []string{
	"id", "provider_event_id", "event_type", "object_id", "raw_payload", "received_at",
	"finalized_at", "final_state", "outcome_reason", "linked_order_id",
	"last_error_kind", "last_error_code", "last_error_message", "last_error_at",
	"attempt_count", "reprocess_count", "last_reprocessed_by", "last_reprocessed_at",
	"lease_owner", "lease_expires_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func receivedRow(id uuid.UUID, eventID string, now time.Time) []any {
	return []any{
		id, eventID, domain.EventCheckoutSessionCompleted, "cs_test_1", []byte(`{"id":"` + eventID + `"}`), now,
		(*time.Time)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		(*string)(nil), (*string)(nil), (*string)(nil), (*time.Time)(nil),
		0, 0, (*string)(nil), (*time.Time)(nil),
		(*string)(nil), (*time.Time)(nil), now,
	}
}

func processedRow(id uuid.UUID, eventID, orderID string, now time.Time) []any {
	return []any{
		id, eventID, domain.EventCheckoutSessionCompleted, "cs_test_1", []byte(`{}`), now,
		timePtr(now), strPtr("processed"), (*string)(nil), strPtr(orderID),
		strPtr("error_transient"), strPtr("ledger-timeout"), strPtr("deadline exceeded"), timePtr(now.Add(-time.Minute)),
		1, 0, (*string)(nil), (*time.Time)(nil),
		(*string)(nil), (*time.Time)(nil), now,
	}
}

func TestWebhookEventRepo_Lookup(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE provider_event_id").
		WithArgs("evt_1").
		WillReturnRows(pgxmock.NewRows(webhookEventColumnNames).AddRow(processedRow(id, "evt_1", "ord_9", now)...))

	rec, err := repo.Lookup(context.Background(), "evt_1")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, id, rec.ID)
	assert.Equal(t, domain.EventStateProcessed, rec.State())
	assert.True(t, rec.IsTerminal())
	require.NotNil(t, rec.LinkedOrderID)
	assert.Equal(t, "ord_9", *rec.LinkedOrderID)
	require.NotNil(t, rec.LastError, "last error survives finalization as history")
	assert.Equal(t, domain.OutcomeErrorTransient, rec.LastError.Kind)
	assert.Equal(t, "ledger-timeout", rec.LastError.Code)
	assert.Equal(t, 1, rec.AttemptCount)

	outcome, ok := rec.StoredOutcome()
	require.True(t, ok)
	assert.Equal(t, domain.Processed("ord_9"), outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_Lookup_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE provider_event_id").
		WithArgs("evt_missing").
		WillReturnRows(pgxmock.NewRows(webhookEventColumnNames))

	rec, err := repo.Lookup(context.Background(), "evt_missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(webhookEventColumnNames).AddRow(receivedRow(id, "evt_2", now)...))

	rec, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "evt_2", rec.ProviderEventID)
	assert.Equal(t, domain.EventStateReceived, rec.State())
	assert.Nil(t, rec.LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_RecordReceived_Inserted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := domain.NewWebhookEventRecord(domain.VerifiedEvent{
		ID: "evt_new", Type: domain.EventInvoicePaid, ObjectID: "in_1", RawPayload: []byte(`{}`),
	}, now)

	mock.ExpectExec("INSERT INTO webhook_events .+ ON CONFLICT \\(provider_event_id\\) DO NOTHING").
		WithArgs(rec.ID, "evt_new", domain.EventInvoicePaid, "in_1", rec.RawPayload, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := repo.RecordReceived(context.Background(), rec)
	require.NoError(t, err)
	assert.Same(t, rec, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_RecordReceived_DuplicateReturnsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	existingID := uuid.New()
	rec := domain.NewWebhookEventRecord(domain.VerifiedEvent{
		ID: "evt_dup", Type: domain.EventCheckoutSessionCompleted, ObjectID: "cs_test_1",
	}, now)

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(rec.ID, "evt_dup", domain.EventCheckoutSessionCompleted, "cs_test_1", rec.RawPayload, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE provider_event_id").
		WithArgs("evt_dup").
		WillReturnRows(pgxmock.NewRows(webhookEventColumnNames).AddRow(processedRow(existingID, "evt_dup", "ord_1", now)...))

	got, err := repo.RecordReceived(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, existingID, got.ID, "the stored row wins over the new one")
	assert.True(t, got.IsTerminal())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_RecordReceived_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	rec := domain.NewWebhookEventRecord(domain.VerifiedEvent{ID: "evt_x", Type: "t", ObjectID: "o"}, time.Now())

	mock.ExpectExec("INSERT INTO webhook_events").
		WillReturnError(errors.New("connection reset"))

	_, err = repo.RecordReceived(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert webhook event")
}

func TestWebhookEventRepo_MarkProcessed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE webhook_events SET finalized_at = .+ final_state = 'processed'").
		WithArgs("evt_1", at, "ord_1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkProcessed(context.Background(), "evt_1", "ord_1", at, domain.FinalizeOptions{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_MarkProcessed_TerminalIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	at := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectExec("UPDATE webhook_events").
		WithArgs("evt_1", at, "ord_2", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE provider_event_id").
		WithArgs("evt_1").
		WillReturnRows(pgxmock.NewRows(webhookEventColumnNames).AddRow(processedRow(uuid.New(), "evt_1", "ord_1", at)...))

	err = repo.MarkProcessed(context.Background(), "evt_1", "ord_2", at, domain.FinalizeOptions{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_MarkIgnored_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE webhook_events SET finalized_at = .+ final_state = 'ignored'").
		WithArgs("evt_gone", at, domain.ReasonUnsupportedEventType, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE provider_event_id").
		WithArgs("evt_gone").
		WillReturnRows(pgxmock.NewRows(webhookEventColumnNames))

	err = repo.MarkIgnored(context.Background(), "evt_gone", domain.ReasonUnsupportedEventType, at, domain.FinalizeOptions{})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_MarkIgnored_Override(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE webhook_events .+ \(finalized_at IS NULL OR \(\$4 AND final_state <> 'processed'\)\)`).
		WithArgs("evt_1", at, domain.ReasonPaymentNotSettled, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkIgnored(context.Background(), "evt_1", domain.ReasonPaymentNotSettled, at, domain.FinalizeOptions{Override: true})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_MarkAttemptFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	at := time.Now().UTC()
	lastErr := domain.LastError{
		Kind:    domain.OutcomeErrorTransient,
		Code:    domain.ReasonProviderTimeout,
		Message: "context deadline exceeded",
		At:      at,
	}

	mock.ExpectExec("UPDATE webhook_events SET last_error_kind = .+ attempt_count = attempt_count \\+ 1").
		WithArgs("evt_1", "error_transient", domain.ReasonProviderTimeout, "context deadline exceeded", at, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkAttemptFailed(context.Background(), "evt_1", lastErr, domain.FinalizeOptions{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_AcquireLease(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"free lease is won", 1, true},
		{"held lease is lost", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewWebhookEventRepo(mock)
			now := time.Now().UTC()
			expires := now.Add(30 * time.Second)

			mock.ExpectExec("UPDATE webhook_events SET lease_owner = .+lease_expires_at IS NULL OR lease_expires_at <").
				WithArgs("evt_1", "owner-a", expires, now, false).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			got, err := repo.AcquireLease(context.Background(), "evt_1", "owner-a", now, expires, domain.FinalizeOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWebhookEventRepo_ReleaseLease(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectExec("UPDATE webhook_events SET lease_owner = NULL").
		WithArgs("evt_1", "owner-a").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.ReleaseLease(context.Background(), "evt_1", "owner-a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_NoteReprocess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE webhook_events SET reprocess_count = reprocess_count \\+ 1").
		WithArgs("evt_1", "ops-alice", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE webhook_events SET reprocess_count").
		WithArgs("evt_missing", "ops-alice", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.NoError(t, repo.NoteReprocess(context.Background(), "evt_1", "ops-alice", at))
	assert.ErrorIs(t, repo.NoteReprocess(context.Background(), "evt_missing", "ops-alice", at), domain.ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
