package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"payment-event-pipeline/config"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ledger-signing-secret"

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.LedgerConfig{
		BaseURL:       srv.URL,
		SigningSecret: testSecret,
		ClientID:      "pipeline-test",
		Timeout:       timeout,
	}, service.NewHMACSignatureService())
}

func sampleRequest() domain.OrderUpsertRequest {
	return domain.OrderUpsertRequest{
		OrderKey:          "payment_intent:pi_1",
		Source:            domain.CanonicalKindCheckoutSession,
		CheckoutSessionID: "cs_1",
		PaymentIntentID:   "pi_1",
		Currency:          "usd",
		AmountTotal:       4200,
		Items:             []domain.OrderItem{{PriceID: "price_1", Quantity: 2, AmountTotal: 4200}},
	}
}

func TestClient_Upsert_SignedRequest(t *testing.T) {
	sig := service.NewHMACSignatureService()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, UpsertPath, r.URL.Path)
		assert.Equal(t, "pipeline-test", r.Header.Get("X-Client-ID"))
		assert.Equal(t, "payment_intent:pi_1", r.Header.Get("Idempotency-Key"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		ts, err := strconv.ParseInt(r.Header.Get("X-Timestamp"), 10, 64)
		assert.NoError(t, err)

		canonical := sig.BuildCanonicalString(r.Method, r.URL.Path, ts, r.Header.Get("X-Nonce"), string(body))
		assert.Equal(t, sig.Sign(testSecret, canonical), r.Header.Get("X-Signature"), "ledger recomputes the same signature")

		var req domain.OrderUpsertRequest
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "cs_1", req.CheckoutSessionID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"order_id":"ord_1","created":true}`))
	}, time.Second)

	res, err := client.UpsertOrderFromPayment(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "ord_1", res.OrderID)
	assert.True(t, res.Created)
}

func TestClient_Upsert_Rejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error_code":"UNKNOWN_PRICE","message":"price_1 is not sold here"}`))
	}, time.Second)

	_, err := client.UpsertOrderFromPayment(context.Background(), sampleRequest())

	var rej *domain.LedgerRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "UNKNOWN_PRICE", rej.Code)
	assert.Equal(t, "price_1 is not sold here", rej.Reason)
}

func TestClient_Upsert_RejectionWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}, time.Second)

	_, err := client.UpsertOrderFromPayment(context.Background(), sampleRequest())

	var rej *domain.LedgerRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "http_409", rej.Code)
}

func TestClient_Upsert_TransientStatuses(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusRequestTimeout} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}, time.Second)

			_, err := client.UpsertOrderFromPayment(context.Background(), sampleRequest())
			assert.ErrorIs(t, err, domain.ErrLedgerTransient)
		})
	}
}

func TestClient_Upsert_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.UpsertOrderFromPayment(ctx, sampleRequest())
	assert.ErrorIs(t, err, domain.ErrLedgerTransient)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
