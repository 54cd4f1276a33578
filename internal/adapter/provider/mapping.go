package provider

import (
	"payment-event-pipeline/internal/core/domain"

	"github.com/stripe/stripe-go/v79"
)

// sessionSnapshot counts line items as expanded only once every page is present.
func sessionSnapshot(s *stripe.CheckoutSession) *domain.CheckoutSessionSnapshot {
	snap := &domain.CheckoutSessionSnapshot{
		ID:                s.ID,
		Status:            string(s.Status),
		PaymentStatus:     string(s.PaymentStatus),
		Mode:              string(s.Mode),
		AmountTotal:       s.AmountTotal,
		Currency:          string(s.Currency),
		ClientReferenceID: s.ClientReferenceID,
		Metadata:          s.Metadata,
		Payer:             sessionPayer(s),
	}
	if s.PaymentIntent != nil {
		snap.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.Invoice != nil {
		snap.InvoiceID = s.Invoice.ID
	}
	if s.LineItems != nil {
		snap.LineItemsExpanded = !s.LineItems.HasMore
		for _, li := range s.LineItems.Data {
			if li == nil {
				continue
			}
			item := domain.LineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: li.AmountTotal,
				Currency:    string(li.Currency),
			}
			if li.Price != nil {
				item.PriceID = li.Price.ID
				if li.Price.Product != nil {
					item.ProductID = li.Price.Product.ID
				}
			}
			snap.LineItems = append(snap.LineItems, item)
		}
	}
	return snap
}

func sessionPayer(s *stripe.CheckoutSession) domain.Payer {
	var p domain.Payer
	if d := s.CustomerDetails; d != nil {
		p.Email, p.Name, p.Phone = d.Email, d.Name, d.Phone
	}
	if p.Email == "" {
		p.Email = s.CustomerEmail
	}
	if s.Customer != nil {
		p.CustomerID = s.Customer.ID
	}
	return p
}

func invoiceSnapshot(inv *stripe.Invoice) *domain.InvoiceSnapshot {
	snap := &domain.InvoiceSnapshot{
		ID:         inv.ID,
		Number:     inv.Number,
		Status:     string(inv.Status),
		AmountPaid: inv.AmountPaid,
		Currency:   string(inv.Currency),
		Metadata:   inv.Metadata,
		Payer: domain.Payer{
			Email: inv.CustomerEmail,
			Name:  inv.CustomerName,
			Phone: inv.CustomerPhone,
		},
	}
	if inv.Customer != nil {
		snap.Payer.CustomerID = inv.Customer.ID
	}
	if inv.Subscription != nil {
		snap.SubscriptionID = inv.Subscription.ID
	}
	if inv.PaymentIntent != nil {
		snap.PaymentIntentID = inv.PaymentIntent.ID
	}
	if inv.Lines != nil {
		snap.LinesExpanded = !inv.Lines.HasMore
		for _, l := range inv.Lines.Data {
			if l == nil {
				continue
			}
			item := domain.LineItem{
				Description: l.Description,
				Quantity:    l.Quantity,
				AmountTotal: l.Amount,
				Currency:    string(l.Currency),
			}
			if l.Price != nil {
				item.PriceID = l.Price.ID
				if l.Price.Product != nil {
					item.ProductID = l.Price.Product.ID
				}
			}
			snap.Lines = append(snap.Lines, item)
		}
	}
	return snap
}

func paymentIntentSnapshot(pi *stripe.PaymentIntent) *domain.PaymentIntentSnapshot {
	snap := &domain.PaymentIntentSnapshot{
		ID:             pi.ID,
		Status:         string(pi.Status),
		AmountReceived: pi.AmountReceived,
		Currency:       string(pi.Currency),
		Metadata:       pi.Metadata,
		Payer:          domain.Payer{Email: pi.ReceiptEmail},
	}
	if pi.Customer != nil {
		snap.Payer.CustomerID = pi.Customer.ID
		if snap.Payer.Email == "" {
			snap.Payer.Email = pi.Customer.Email
		}
		snap.Payer.Name = pi.Customer.Name
	}
	if pi.Invoice != nil {
		snap.InvoiceID = pi.Invoice.ID
	}
	if ch := pi.LatestCharge; ch != nil {
		snap.LatestChargeID = ch.ID
		if bd := ch.BillingDetails; bd != nil {
			if snap.Payer.Email == "" {
				snap.Payer.Email = bd.Email
			}
			if snap.Payer.Name == "" {
				snap.Payer.Name = bd.Name
			}
			if snap.Payer.Phone == "" {
				snap.Payer.Phone = bd.Phone
			}
		}
	}
	return snap
}
