package provider

import (
	"context"
	"fmt"

	"payment-event-pipeline/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Refetcher loads the authoritative provider object for an event.
// Webhook bodies are never trusted beyond the object id.
type Refetcher struct {
	api *client.API
	log zerolog.Logger
}

// NewRefetcher creates a Refetcher on top of a Stripe API client.
func NewRefetcher(api *client.API, log zerolog.Logger) *Refetcher {
	return &Refetcher{api: api, log: log}
}

// Refetch dispatches on the event type and returns a fully expanded snapshot.
func (r *Refetcher) Refetch(ctx context.Context, eventType, objectID string) (*domain.CanonicalPaymentObject, error) {
	kind, ok := domain.CanonicalKindFor(eventType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEventType, eventType)
	}

	switch kind {
	case domain.CanonicalKindCheckoutSession:
		return r.refetchSession(ctx, objectID)
	case domain.CanonicalKindInvoice:
		return r.refetchInvoice(ctx, objectID)
	case domain.CanonicalKindPaymentIntent:
		return r.refetchPaymentIntent(ctx, objectID)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEventType, eventType)
}

func (r *Refetcher) refetchSession(ctx context.Context, id string) (*domain.CanonicalPaymentObject, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	params.AddExpand("payment_intent")

	s, err := r.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, classify(err)
	}
	if err := r.completeSessionLineItems(ctx, s); err != nil {
		return nil, err
	}
	return &domain.CanonicalPaymentObject{
		Kind:    domain.CanonicalKindCheckoutSession,
		Session: sessionSnapshot(s),
	}, nil
}

func (r *Refetcher) refetchInvoice(ctx context.Context, id string) (*domain.CanonicalPaymentObject, error) {
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	inv, err := r.api.Invoices.Get(id, params)
	if err != nil {
		return nil, classify(err)
	}
	if err := r.completeInvoiceLines(ctx, inv); err != nil {
		return nil, err
	}
	return &domain.CanonicalPaymentObject{
		Kind:    domain.CanonicalKindInvoice,
		Invoice: invoiceSnapshot(inv),
	}, nil
}

// refetchPaymentIntent accepts either a payment intent id or a charge id.
// A charge is followed to its payment intent.
func (r *Refetcher) refetchPaymentIntent(ctx context.Context, id string) (*domain.CanonicalPaymentObject, error) {
	resolvedVia := domain.ResolvedDirect
	pi, err := r.getPaymentIntent(ctx, id)
	if err != nil && isResourceMissing(err) {
		piID, chErr := r.paymentIntentForCharge(ctx, id)
		if chErr != nil {
			return nil, chErr
		}
		resolvedVia = domain.ResolvedChargeReference
		pi, err = r.getPaymentIntent(ctx, piID)
	}
	if err != nil {
		return nil, classify(err)
	}

	snap := paymentIntentSnapshot(pi)
	snap.ResolvedVia = resolvedVia
	snap.Session, snap.Enrichment = r.enrichWithSession(ctx, pi.ID)

	return &domain.CanonicalPaymentObject{
		Kind:          domain.CanonicalKindPaymentIntent,
		PaymentIntent: snap,
	}, nil
}

func (r *Refetcher) getPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")
	return r.api.PaymentIntents.Get(id, params)
}

func (r *Refetcher) paymentIntentForCharge(ctx context.Context, chargeID string) (string, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx

	ch, err := r.api.Charges.Get(chargeID, params)
	if err != nil {
		return "", classify(err)
	}
	if ch.PaymentIntent == nil || ch.PaymentIntent.ID == "" {
		return "", fmt.Errorf("%w: charge %s has no payment intent", domain.ErrNotFoundUpstream, chargeID)
	}
	return ch.PaymentIntent.ID, nil
}

// enrichWithSession looks up the checkout session that created the payment
// intent. Failures only degrade the snapshot.
func (r *Refetcher) enrichWithSession(ctx context.Context, paymentIntentID string) (*domain.CheckoutSessionSnapshot, domain.EnrichmentStatus) {
	params := &stripe.CheckoutSessionListParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	params.AddExpand("data.line_items")

	iter := r.api.CheckoutSessions.List(params)
	if iter.Next() {
		s := iter.CheckoutSession()
		if err := r.completeSessionLineItems(ctx, s); err != nil {
			r.log.Warn().Err(err).
				Str("payment_intent_id", paymentIntentID).
				Str("session_id", s.ID).
				Msg("refetch: checkout session line items incomplete")
			return nil, domain.EnrichmentUnavailable
		}
		return sessionSnapshot(s), domain.EnrichmentFound
	}
	if err := iter.Err(); err != nil {
		r.log.Warn().Err(err).
			Str("payment_intent_id", paymentIntentID).
			Msg("refetch: checkout session enrichment unavailable")
		return nil, domain.EnrichmentUnavailable
	}
	return nil, domain.EnrichmentNotFound
}

// lineItemPageSize is the largest page Stripe serves for list endpoints.
const lineItemPageSize = 100

// completeSessionLineItems replaces a truncated expanded line item list with
// every page from the line items endpoint.
func (r *Refetcher) completeSessionLineItems(ctx context.Context, s *stripe.CheckoutSession) error {
	if s.LineItems == nil || !s.LineItems.HasMore {
		return nil
	}
	params := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(s.ID)}
	params.Context = ctx
	params.Limit = stripe.Int64(lineItemPageSize)

	var items []*stripe.LineItem
	iter := r.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return classify(err)
	}
	s.LineItems.Data = items
	s.LineItems.HasMore = false
	return nil
}

// completeInvoiceLines does the same for invoice lines.
func (r *Refetcher) completeInvoiceLines(ctx context.Context, inv *stripe.Invoice) error {
	if inv.Lines == nil || !inv.Lines.HasMore {
		return nil
	}
	params := &stripe.InvoiceListLinesParams{Invoice: stripe.String(inv.ID)}
	params.Context = ctx
	params.Limit = stripe.Int64(lineItemPageSize)

	var lines []*stripe.InvoiceLineItem
	iter := r.api.Invoices.ListLines(params)
	for iter.Next() {
		lines = append(lines, iter.InvoiceLineItem())
	}
	if err := iter.Err(); err != nil {
		return classify(err)
	}
	inv.Lines.Data = lines
	inv.Lines.HasMore = false
	return nil
}
