package domain

import (
	"strconv"
	"strings"
)

// OrderItem is one line of the order submitted to the order ledger.
type OrderItem struct {
	PriceID     string `json:"price_id"`
	ProductID   string `json:"product_id,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

// OrderUpsertRequest is the payload of the order ledger's single idempotent
// upsert operation. OrderKey is derived from business identifiers, never from
// the provider event id, so re-dispatching converges on the same order.
type OrderUpsertRequest struct {
	OrderKey          string            `json:"order_key"`
	Source            CanonicalKind     `json:"source"`
	CheckoutSessionID string            `json:"checkout_session_id,omitempty"`
	InvoiceID         string            `json:"invoice_id,omitempty"`
	PaymentIntentID   string            `json:"payment_intent_id,omitempty"`
	SubscriptionID    string            `json:"subscription_id,omitempty"`
	ClientReference   string            `json:"client_reference,omitempty"`
	Payer             Payer             `json:"payer"`
	Currency          string            `json:"currency"`
	AmountTotal       int64             `json:"amount_total"`
	Items             []OrderItem       `json:"items"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// OrderUpsertResult is the order ledger's answer for an accepted upsert.
type OrderUpsertResult struct {
	OrderID string `json:"order_id"`
	Created bool   `json:"created"`
}

// OrderKey prefers the invoice, then the payment intent, then the object's own id,
// so every event about one purchase maps to the same key.
func OrderKey(invoiceID, paymentIntentID string, fallbackKind CanonicalKind, fallbackID string) string {
	switch {
	case invoiceID != "":
		return string(CanonicalKindInvoice) + ":" + invoiceID
	case paymentIntentID != "":
		return string(CanonicalKindPaymentIntent) + ":" + paymentIntentID
	}
	return string(fallbackKind) + ":" + fallbackID
}

// IsSettled reports whether the provider considers the payment complete.
func (o *CanonicalPaymentObject) IsSettled() bool {
	switch o.Kind {
	case CanonicalKindCheckoutSession:
		return o.Session != nil &&
			(o.Session.PaymentStatus == "paid" || o.Session.PaymentStatus == "no_payment_required")
	case CanonicalKindInvoice:
		return o.Invoice != nil && o.Invoice.Status == "paid"
	case CanonicalKindPaymentIntent:
		return o.PaymentIntent != nil && o.PaymentIntent.Status == "succeeded"
	}
	return false
}

// BuildOrderUpsert validates the expansions required for o.Kind and derives the
// ledger request. It returns ErrMissingExpansions instead of guessing.
func BuildOrderUpsert(o *CanonicalPaymentObject) (OrderUpsertRequest, error) {
	if o == nil {
		return OrderUpsertRequest{}, ErrMissingExpansions
	}
	switch o.Kind {
	case CanonicalKindCheckoutSession:
		if o.Session == nil {
			return OrderUpsertRequest{}, ErrMissingExpansions
		}
		return sessionUpsert(o.Session)
	case CanonicalKindInvoice:
		if o.Invoice == nil {
			return OrderUpsertRequest{}, ErrMissingExpansions
		}
		return invoiceUpsert(o.Invoice)
	case CanonicalKindPaymentIntent:
		if o.PaymentIntent == nil {
			return OrderUpsertRequest{}, ErrMissingExpansions
		}
		return paymentIntentUpsert(o.PaymentIntent)
	}
	return OrderUpsertRequest{}, ErrUnsupportedEventType
}

func sessionUpsert(s *CheckoutSessionSnapshot) (OrderUpsertRequest, error) {
	items, ok := orderItems(s.LineItems, s.LineItemsExpanded)
	if !ok {
		return OrderUpsertRequest{}, ErrMissingExpansions
	}
	return OrderUpsertRequest{
		OrderKey:          OrderKey(s.InvoiceID, s.PaymentIntentID, CanonicalKindCheckoutSession, s.ID),
		Source:            CanonicalKindCheckoutSession,
		CheckoutSessionID: s.ID,
		InvoiceID:         s.InvoiceID,
		PaymentIntentID:   s.PaymentIntentID,
		ClientReference:   s.ClientReferenceID,
		Payer:             s.Payer,
		Currency:          s.Currency,
		AmountTotal:       s.AmountTotal,
		Items:             items,
		Metadata:          s.Metadata,
	}, nil
}

func invoiceUpsert(inv *InvoiceSnapshot) (OrderUpsertRequest, error) {
	items, ok := orderItems(inv.Lines, inv.LinesExpanded)
	if !ok {
		return OrderUpsertRequest{}, ErrMissingExpansions
	}
	return OrderUpsertRequest{
		OrderKey:        OrderKey(inv.ID, inv.PaymentIntentID, CanonicalKindInvoice, inv.ID),
		Source:          CanonicalKindInvoice,
		InvoiceID:       inv.ID,
		PaymentIntentID: inv.PaymentIntentID,
		SubscriptionID:  inv.SubscriptionID,
		Payer:           inv.Payer,
		Currency:        inv.Currency,
		AmountTotal:     inv.AmountPaid,
		Items:           items,
		Metadata:        inv.Metadata,
	}, nil
}

// paymentIntentUpsert takes line items from the enriched checkout session when
// there is one, otherwise from a single-price purchase described in metadata.
// A session whose line items are incomplete never falls back to metadata.
func paymentIntentUpsert(pi *PaymentIntentSnapshot) (OrderUpsertRequest, error) {
	req := OrderUpsertRequest{
		Source:          CanonicalKindPaymentIntent,
		PaymentIntentID: pi.ID,
		InvoiceID:       pi.InvoiceID,
		Payer:           pi.Payer,
		Currency:        pi.Currency,
		AmountTotal:     pi.AmountReceived,
		Metadata:        pi.Metadata,
	}

	if s := pi.Session; s != nil {
		items, ok := orderItems(s.LineItems, s.LineItemsExpanded)
		if !ok {
			return OrderUpsertRequest{}, ErrMissingExpansions
		}
		req.Items = items
		req.CheckoutSessionID = s.ID
		req.ClientReference = s.ClientReferenceID
		if req.InvoiceID == "" {
			req.InvoiceID = s.InvoiceID
		}
		if req.Payer.Email == "" {
			req.Payer = s.Payer
		}
	} else {
		item, ok := metadataItem(pi)
		if !ok {
			return OrderUpsertRequest{}, ErrMissingExpansions
		}
		req.Items = []OrderItem{item}
	}

	req.OrderKey = OrderKey(req.InvoiceID, pi.ID, CanonicalKindPaymentIntent, pi.ID)
	return req, nil
}

func orderItems(lines []LineItem, expanded bool) ([]OrderItem, bool) {
	if !expanded || len(lines) == 0 {
		return nil, false
	}
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.PriceID == "" {
			return nil, false
		}
		items = append(items, OrderItem{
			PriceID:     l.PriceID,
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			AmountTotal: l.AmountTotal,
		})
	}
	return items, true
}

func metadataItem(pi *PaymentIntentSnapshot) (OrderItem, bool) {
	priceID := strings.TrimSpace(pi.Metadata["price_id"])
	if priceID == "" {
		return OrderItem{}, false
	}
	qty := int64(1)
	if raw := pi.Metadata["quantity"]; raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return OrderItem{}, false
		}
		qty = n
	}
	return OrderItem{
		PriceID:     priceID,
		ProductID:   pi.Metadata["product_id"],
		Quantity:    qty,
		AmountTotal: pi.AmountReceived,
	}, true
}
