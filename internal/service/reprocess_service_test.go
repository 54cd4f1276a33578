package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"payment-event-pipeline/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupReprocess(t *testing.T) (*ReprocessServiceImpl, *pipelineTestDeps) {
	d := setupPipeline(t, nil)
	return NewReprocessService(d.store, d.svc, newTestLogger()), d
}

func seedRecord(t *testing.T, d *pipelineTestDeps, evt domain.VerifiedEvent) *domain.WebhookEventRecord {
	t.Helper()
	rec, err := d.store.RecordReceived(context.Background(), domain.NewWebhookEventRecord(evt, time.Now()))
	require.NoError(t, err)
	return rec
}

func TestReprocess_RequiresExactlyOneSelector(t *testing.T) {
	svc, _ := setupReprocess(t)
	id := uuid.New()

	_, err := svc.Reprocess(context.Background(), domain.ReprocessRequest{Operator: "alice"})
	requireAppError(t, err, "VAL_001", http.StatusBadRequest)

	_, err = svc.Reprocess(context.Background(), domain.ReprocessRequest{ProviderEventID: "evt_1", RecordID: &id, Operator: "alice"})
	requireAppError(t, err, "VAL_001", http.StatusBadRequest)
}

func TestReprocess_UnknownRecord(t *testing.T) {
	svc, _ := setupReprocess(t)
	id := uuid.New()

	_, err := svc.Reprocess(context.Background(), domain.ReprocessRequest{RecordID: &id, Operator: "alice"})
	requireAppError(t, err, "EVT_001", http.StatusNotFound)

	_, err = svc.Reprocess(context.Background(), domain.ReprocessRequest{ProviderEventID: "evt_missing", Operator: "alice"})
	requireAppError(t, err, "EVT_001", http.StatusNotFound)
}

func TestReprocess_NonTerminalRedrivesByRecordID(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()
	rec := seedRecord(t, d, sessionEvent("evt_1"))
	require.NoError(t, d.store.MarkAttemptFailed(ctx, "evt_1", domain.LastError{
		Kind: domain.OutcomeErrorTransient, Code: domain.ReasonLedgerUnavailable, At: time.Now(),
	}, domain.FinalizeOptions{}))

	d.refetcher.EXPECT().Refetch(gomock.Any(), domain.EventCheckoutSessionCompleted, "cs_1").Return(paidSession("cs_1"), nil)
	d.ledger.EXPECT().UpsertOrderFromPayment(gomock.Any(), gomock.Any()).Return(&domain.OrderUpsertResult{OrderID: "ord_1"}, nil)
	d.confirm.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Reprocess(ctx, domain.ReprocessRequest{RecordID: &rec.ID, Operator: "alice"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, res.RecordID)
	assert.Equal(t, domain.Processed("ord_1"), res.Outcome)
	assert.False(t, res.Replay)

	stored, err := d.store.Lookup(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReprocessCount)
	require.NotNil(t, stored.LastReprocessedBy)
	assert.Equal(t, "alice", *stored.LastReprocessedBy)
}

func TestReprocess_TerminalWithoutForceIsReplay(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()
	seedRecord(t, d, sessionEvent("evt_1"))
	require.NoError(t, d.store.MarkProcessed(ctx, "evt_1", "ord_1", time.Now(), domain.FinalizeOptions{}))

	res, err := svc.Reprocess(ctx, domain.ReprocessRequest{ProviderEventID: "evt_1", Operator: "alice"})
	require.NoError(t, err)
	assert.True(t, res.Replay)
	assert.Equal(t, domain.Processed("ord_1"), res.Outcome)

	stored, err := d.store.Lookup(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ReprocessCount, "replay must not mutate the record")
}

func TestReprocess_ForceOverridesTerminalRecord(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()
	seedRecord(t, d, sessionEvent("evt_1"))
	require.NoError(t, d.store.MarkIgnored(ctx, "evt_1", domain.ReasonObjectNotFound, time.Now(), domain.FinalizeOptions{}))

	d.refetcher.EXPECT().Refetch(gomock.Any(), gomock.Any(), gomock.Any()).Return(paidSession("cs_1"), nil)
	d.ledger.EXPECT().UpsertOrderFromPayment(gomock.Any(), gomock.Any()).Return(&domain.OrderUpsertResult{OrderID: "ord_1"}, nil)
	d.confirm.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Reprocess(ctx, domain.ReprocessRequest{ProviderEventID: "evt_1", Force: true, Operator: "alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.Processed("ord_1"), res.Outcome)
	assert.Equal(t, domain.EventStateProcessed, res.State)
}

func TestReprocess_ForcedFailureKeepsTerminalState(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()
	seedRecord(t, d, sessionEvent("evt_1"))
	require.NoError(t, d.store.MarkProcessed(ctx, "evt_1", "ord_1", time.Now(), domain.FinalizeOptions{}))

	d.refetcher.EXPECT().Refetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: status 503", domain.ErrProviderTransient))

	res, err := svc.Reprocess(ctx, domain.ReprocessRequest{ProviderEventID: "evt_1", Force: true, Operator: "alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStateProcessed, res.State)
	assert.Equal(t, domain.OutcomeErrorTransient, res.Outcome.Kind, "the failed re-run is what the operator sees")
	assert.Equal(t, domain.ReasonProviderUnavailable, res.Outcome.Reason)
	require.NotNil(t, res.AttemptOutcome)
	assert.Equal(t, res.Outcome, *res.AttemptOutcome)
	require.NotNil(t, res.LastError)
	assert.Equal(t, domain.ReasonProviderUnavailable, res.LastError.Code)

	stored, err := d.store.Lookup(ctx, "evt_1")
	require.NoError(t, err)
	outcome, ok := stored.StoredOutcome()
	require.True(t, ok)
	assert.Equal(t, domain.Processed("ord_1"), outcome)
}

func TestReprocess_ForcedIgnoreKeepsProcessedOrderLink(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()
	seedRecord(t, d, sessionEvent("evt_1"))
	require.NoError(t, d.store.MarkProcessed(ctx, "evt_1", "ord_1", time.Now(), domain.FinalizeOptions{}))

	d.refetcher.EXPECT().Refetch(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: session cs_1", domain.ErrNotFoundUpstream))

	res, err := svc.Reprocess(ctx, domain.ReprocessRequest{ProviderEventID: "evt_1", Force: true, Operator: "alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStateProcessed, res.State)
	assert.Equal(t, domain.Processed("ord_1"), res.Outcome)
	require.NotNil(t, res.AttemptOutcome)
	assert.Equal(t, domain.Ignored(domain.ReasonObjectNotFound), *res.AttemptOutcome)

	stored, err := d.store.Lookup(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, domain.EventStateProcessed, stored.State())
	require.NotNil(t, stored.LinkedOrderID)
	assert.Equal(t, "ord_1", *stored.LinkedOrderID)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, domain.OutcomeIgnored, stored.LastError.Kind)
	assert.Equal(t, domain.ReasonObjectNotFound, stored.LastError.Code)
}

func TestReprocess_OperatorSuppliedEvent(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()

	d.refetcher.EXPECT().Refetch(gomock.Any(), domain.EventInvoicePaid, "in_9").Return(&domain.CanonicalPaymentObject{
		Kind: domain.CanonicalKindInvoice,
		Invoice: &domain.InvoiceSnapshot{
			ID: "in_9", Status: "paid", AmountPaid: 900, Currency: "eur",
			Lines:         []domain.LineItem{{PriceID: "price_9", Quantity: 1, AmountTotal: 900}},
			LinesExpanded: true,
		},
	}, nil)
	d.ledger.EXPECT().UpsertOrderFromPayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.OrderUpsertRequest) (*domain.OrderUpsertResult, error) {
			assert.Equal(t, "invoice:in_9", req.OrderKey)
			return &domain.OrderUpsertResult{OrderID: "ord_9"}, nil
		})
	d.confirm.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Reprocess(ctx, domain.ReprocessRequest{
		ProviderEventID: "evt_lost",
		EventType:       domain.EventInvoicePaid,
		ObjectID:        "in_9",
		Operator:        "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Processed("ord_9"), res.Outcome)

	stored, err := d.store.Lookup(ctx, "evt_lost")
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.RawPayload, &payload))
	assert.Equal(t, "operator", payload["source"])
	assert.Equal(t, "alice", payload["operator"])
}

func TestReprocess_Inspect(t *testing.T) {
	svc, d := setupReprocess(t)
	ctx := context.Background()
	rec := seedRecord(t, d, sessionEvent("evt_1"))

	byID, err := svc.Inspect(ctx, rec.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "evt_1", byID.ProviderEventID)

	byEvent, err := svc.Inspect(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byEvent.ID)

	_, err = svc.Inspect(ctx, "evt_nope")
	requireAppError(t, err, "EVT_001", http.StatusNotFound)
}
