package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"payment-event-pipeline/config"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// UpsertPath is the order ledger's single RPC.
const UpsertPath = "/v1/orders/upsert-from-payment"

// errorBody mirrors the ledger's error envelope.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Client implements ports.OrderLedger over signed HTTP.
// Each request carries X-Client-ID, X-Timestamp, X-Nonce and an HMAC-SHA256
// X-Signature over METHOD|PATH|TIMESTAMP|NONCE|BODY.
type Client struct {
	http     *resty.Client
	signer   ports.SignatureService
	secret   string
	clientID string
	now      func() time.Time
}

// NewClient creates an order ledger client.
func NewClient(cfg config.LedgerConfig, signer ports.SignatureService) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
		signer:   signer,
		secret:   cfg.SigningSecret,
		clientID: cfg.ClientID,
		now:      time.Now,
	}
}

// UpsertOrderFromPayment creates or returns the order for req.OrderKey.
// Transport failures, timeouts, 408/429 and 5xx wrap domain.ErrLedgerTransient;
// other 4xx answers become *domain.LedgerRejection.
func (c *Client) UpsertOrderFromPayment(ctx context.Context, req domain.OrderUpsertRequest) (*domain.OrderUpsertResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode upsert request: %w", err)
	}

	ts := c.now().Unix()
	nonce := uuid.NewString()
	canonical := c.signer.BuildCanonicalString(http.MethodPost, UpsertPath, ts, nonce, string(body))

	var (
		result domain.OrderUpsertResult
		apiErr errorBody
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"Content-Type":    "application/json",
			"X-Client-ID":     c.clientID,
			"X-Timestamp":     strconv.FormatInt(ts, 10),
			"X-Nonce":         nonce,
			"X-Signature":     c.signer.Sign(c.secret, canonical),
			"Idempotency-Key": req.OrderKey,
		}).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(UpsertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case resp.IsSuccess():
		return &result, nil
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return nil, fmt.Errorf("%w: ledger answered %d", domain.ErrLedgerTransient, status)
	default:
		code := apiErr.ErrorCode
		if code == "" {
			code = "http_" + strconv.Itoa(status)
		}
		return nil, &domain.LedgerRejection{Code: code, Reason: apiErr.Message}
	}
}
