package service

import (
	"context"
	"errors"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"

	"github.com/rs/zerolog"
)

// Dispatcher turns a canonical provider object into exactly one order ledger
// upsert. It never returns an error: every failure is an outcome variant.
type Dispatcher struct {
	ledger ports.OrderLedger
	log    zerolog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(ledger ports.OrderLedger, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{ledger: ledger, log: log}
}

// Dispatch validates obj for eventType and submits the order upsert.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, obj *domain.CanonicalPaymentObject) domain.Outcome {
	kind, ok := domain.CanonicalKindFor(eventType)
	if !ok {
		return domain.Ignored(domain.ReasonUnsupportedEventType)
	}
	if obj == nil || obj.Kind != kind {
		return domain.Ignored(domain.ReasonMissingExpansions)
	}

	req, err := domain.BuildOrderUpsert(obj)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedEventType) {
			return domain.Ignored(domain.ReasonUnsupportedEventType)
		}
		return domain.Ignored(domain.ReasonMissingExpansions)
	}
	if !obj.IsSettled() {
		return domain.Ignored(domain.ReasonPaymentNotSettled)
	}

	res, err := d.ledger.UpsertOrderFromPayment(ctx, req)
	if err != nil {
		return d.ledgerFailure(req.OrderKey, err)
	}
	if res == nil || res.OrderID == "" {
		return domain.Fatal(domain.ReasonLedgerNoOrder, "order ledger accepted upsert without an order id")
	}

	d.log.Info().
		Str("event_type", eventType).
		Str("order_key", req.OrderKey).
		Str("order_id", res.OrderID).
		Bool("created", res.Created).
		Msg("dispatch: order upserted")
	return domain.Processed(res.OrderID)
}

func (d *Dispatcher) ledgerFailure(orderKey string, err error) domain.Outcome {
	var rejection *domain.LedgerRejection
	switch {
	case errors.As(err, &rejection):
		d.log.Warn().Str("order_key", orderKey).Str("reason", rejection.Code).Msg("dispatch: order ledger rejected upsert")
		return domain.Fatal(rejection.Code, rejection.Reason)
	case errors.Is(err, context.DeadlineExceeded):
		d.log.Warn().Err(err).Str("order_key", orderKey).Msg("dispatch: order ledger timed out")
		return domain.Transient(domain.ReasonLedgerTimeout, err.Error())
	}
	d.log.Warn().Err(err).Str("order_key", orderKey).Msg("dispatch: order ledger unavailable")
	return domain.Transient(domain.ReasonLedgerUnavailable, err.Error())
}
