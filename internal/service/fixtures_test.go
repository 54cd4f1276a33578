package service

import (
	"io"
	"time"

	"payment-event-pipeline/config"
	"payment-event-pipeline/internal/core/domain"

	"github.com/rs/zerolog"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

var testPipelineCfg = config.PipelineConfig{
	RefetchTimeout:    time.Second,
	DispatchTimeout:   time.Second,
	RunTimeout:        3 * time.Second,
	FinalizeTimeout:   time.Second,
	ConfirmTimeout:    time.Second,
	LeaseTTL:          5 * time.Second,
	LeasePollInterval: 10 * time.Millisecond,
	OutcomeCacheTTL:   time.Minute,
}

func paidSession(id string) *domain.CanonicalPaymentObject {
	return &domain.CanonicalPaymentObject{
		Kind: domain.CanonicalKindCheckoutSession,
		Session: &domain.CheckoutSessionSnapshot{
			ID:              id,
			Status:          "complete",
			PaymentStatus:   "paid",
			Mode:            "payment",
			AmountTotal:     4200,
			Currency:        "usd",
			PaymentIntentID: "pi_1",
			Payer:           domain.Payer{Email: "buyer@example.com", Name: "Ada"},
			LineItems: []domain.LineItem{
				{PriceID: "price_1", Description: "Poster", Quantity: 2, AmountTotal: 4200, Currency: "usd"},
			},
			LineItemsExpanded: true,
		},
	}
}

func sessionEvent(id string) domain.VerifiedEvent {
	return domain.VerifiedEvent{
		ID:         id,
		Type:       domain.EventCheckoutSessionCompleted,
		ObjectID:   "cs_1",
		RawPayload: []byte(`{"id":"` + id + `"}`),
	}
}
