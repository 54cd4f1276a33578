package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupFinalizer(t *testing.T) (*Finalizer, *mocks.MockWebhookEventRepository, time.Time) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockWebhookEventRepository(ctrl)
	f := NewFinalizer(repo, time.Second, newTestLogger())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }
	return f, repo, fixed
}

func TestFinalizer_Processed(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	stored := *rec
	state := domain.EventStateProcessed
	orderID := "ord_1"
	stored.FinalizedAt, stored.FinalState, stored.LinkedOrderID = &at, &state, &orderID

	repo.EXPECT().MarkProcessed(gomock.Any(), "evt_1", "ord_1", at, domain.FinalizeOptions{}).Return(nil)
	repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(&stored, nil)

	got, err := f.Apply(context.Background(), rec, domain.Processed("ord_1"), domain.FinalizeOptions{})
	require.NoError(t, err)
	assert.True(t, got.IsTerminal())
	assert.Equal(t, "ord_1", *got.LinkedOrderID)
}

func TestFinalizer_Ignored(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)
	opts := domain.FinalizeOptions{Override: true}

	gomock.InOrder(
		repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(rec, nil),
		repo.EXPECT().MarkIgnored(gomock.Any(), "evt_1", domain.ReasonObjectNotFound, at, opts).Return(nil),
		repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(rec, nil),
	)

	_, err := f.Apply(context.Background(), rec, domain.Ignored(domain.ReasonObjectNotFound), opts)
	require.NoError(t, err)
}

func TestFinalizer_IgnoredWithoutOverrideSkipsLookup(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	gomock.InOrder(
		repo.EXPECT().MarkIgnored(gomock.Any(), "evt_1", domain.ReasonUnsupportedEventType, at, domain.FinalizeOptions{}).Return(nil),
		repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(rec, nil),
	)

	_, err := f.Apply(context.Background(), rec, domain.Ignored(domain.ReasonUnsupportedEventType), domain.FinalizeOptions{})
	require.NoError(t, err)
}

func TestFinalizer_ForcedIgnoreKeepsProcessedRecord(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)
	opts := domain.FinalizeOptions{Override: true}

	processed := *rec
	state := domain.EventStateProcessed
	orderID := "ord_1"
	processed.FinalizedAt, processed.FinalState, processed.LinkedOrderID = &at, &state, &orderID

	gomock.InOrder(
		repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(&processed, nil),
		repo.EXPECT().MarkAttemptFailed(gomock.Any(), "evt_1", gomock.Any(), opts).
			DoAndReturn(func(_ context.Context, _ string, le domain.LastError, _ domain.FinalizeOptions) error {
				assert.Equal(t, domain.OutcomeIgnored, le.Kind)
				assert.Equal(t, domain.ReasonObjectNotFound, le.Code)
				assert.Equal(t, at, le.At)
				return nil
			}),
		repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(&processed, nil),
	)

	got, err := f.Apply(context.Background(), rec, domain.Ignored(domain.ReasonObjectNotFound), opts)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStateProcessed, got.State())
	assert.Equal(t, "ord_1", *got.LinkedOrderID)
}

func TestFinalizer_ErrorOutcomesRecordAttempt(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	repo.EXPECT().MarkAttemptFailed(gomock.Any(), "evt_1", domain.LastError{
		Kind:    domain.OutcomeErrorTransient,
		Code:    domain.ReasonProviderTimeout,
		Message: "context deadline exceeded",
		At:      at,
	}, domain.FinalizeOptions{}).Return(nil)
	repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(rec, nil)

	_, err := f.Apply(context.Background(), rec,
		domain.Transient(domain.ReasonProviderTimeout, "context deadline exceeded"), domain.FinalizeOptions{})
	require.NoError(t, err)
}

func TestFinalizer_FatalWithoutDetailUsesReason(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	repo.EXPECT().MarkAttemptFailed(gomock.Any(), "evt_1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, le domain.LastError, _ domain.FinalizeOptions) error {
			assert.Equal(t, domain.OutcomeErrorFatal, le.Kind)
			assert.Equal(t, "price_archived", le.Message)
			return nil
		})
	repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(rec, nil)

	_, err := f.Apply(context.Background(), rec, domain.Fatal("price_archived", ""), domain.FinalizeOptions{})
	require.NoError(t, err)
}

func TestFinalizer_WritesAfterRunContextExpired(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo.EXPECT().MarkAttemptFailed(gomock.Any(), "evt_1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(wctx context.Context, _ string, _ domain.LastError, _ domain.FinalizeOptions) error {
			assert.NoError(t, wctx.Err())
			return nil
		})
	repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(rec, nil)

	_, err := f.Apply(ctx, rec, domain.Transient(domain.ReasonProviderTimeout, ""), domain.FinalizeOptions{})
	require.NoError(t, err)
}

func TestFinalizer_WriteError(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)
	dbErr := errors.New("connection reset")

	repo.EXPECT().MarkProcessed(gomock.Any(), "evt_1", "ord_1", at, gomock.Any()).Return(dbErr)

	_, err := f.Apply(context.Background(), rec, domain.Processed("ord_1"), domain.FinalizeOptions{})
	assert.ErrorIs(t, err, dbErr)
}

func TestFinalizer_RecordVanished(t *testing.T) {
	f, repo, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	repo.EXPECT().MarkIgnored(gomock.Any(), "evt_1", gomock.Any(), at, gomock.Any()).Return(nil)
	repo.EXPECT().Lookup(gomock.Any(), "evt_1").Return(nil, nil)

	_, err := f.Apply(context.Background(), rec, domain.Ignored(domain.ReasonUnsupportedEventType), domain.FinalizeOptions{})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestFinalizer_UnknownOutcome(t *testing.T) {
	f, _, at := setupFinalizer(t)
	rec := domain.NewWebhookEventRecord(sessionEvent("evt_1"), at)

	_, err := f.Apply(context.Background(), rec, domain.Outcome{Kind: "bogus"}, domain.FinalizeOptions{})
	assert.Error(t, err)
}
