package domain

// CanonicalKind identifies which provider object a CanonicalPaymentObject holds.
type CanonicalKind string

const (
	CanonicalKindCheckoutSession CanonicalKind = "checkout_session"
	CanonicalKindInvoice         CanonicalKind = "invoice"
	CanonicalKindPaymentIntent   CanonicalKind = "payment_intent"
)

// EnrichmentStatus records the result of the optional session lookup for a payment intent.
type EnrichmentStatus string

const (
	EnrichmentFound       EnrichmentStatus = "found"
	EnrichmentNotFound    EnrichmentStatus = "not-found"
	EnrichmentUnavailable EnrichmentStatus = "unavailable"
)

// Payment intent resolution paths.
const (
	ResolvedDirect          = "direct"
	ResolvedChargeReference = "charge-reference"
)

// Payer is the contact captured by the provider at checkout.
type Payer struct {
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// LineItem is one purchased price.
type LineItem struct {
	PriceID     string `json:"price_id"`
	ProductID   string `json:"product_id,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
}

// CheckoutSessionSnapshot is the refetched state of a checkout session.
type CheckoutSessionSnapshot struct {
	ID                string
	Status            string
	PaymentStatus     string
	Mode              string
	AmountTotal       int64
	Currency          string
	ClientReferenceID string
	Metadata          map[string]string
	Payer             Payer
	PaymentIntentID   string
	InvoiceID         string
	LineItems         []LineItem
	LineItemsExpanded bool
}

// InvoiceSnapshot is the refetched state of an invoice.
type InvoiceSnapshot struct {
	ID              string
	Number          string
	Status          string
	AmountPaid      int64
	Currency        string
	SubscriptionID  string
	PaymentIntentID string
	Metadata        map[string]string
	Payer           Payer
	Lines           []LineItem
	LinesExpanded   bool
}

// PaymentIntentSnapshot is the refetched state of a payment authorization.
type PaymentIntentSnapshot struct {
	ID             string
	Status         string
	AmountReceived int64
	Currency       string
	Metadata       map[string]string
	Payer          Payer
	LatestChargeID string
	InvoiceID      string
	ResolvedVia    string
	Session        *CheckoutSessionSnapshot
	Enrichment     EnrichmentStatus
}

// CanonicalPaymentObject is the authoritative provider snapshot handed from
// the refetcher to the dispatcher. Exactly one variant matching Kind is set.
type CanonicalPaymentObject struct {
	Kind          CanonicalKind
	Session       *CheckoutSessionSnapshot
	Invoice       *InvoiceSnapshot
	PaymentIntent *PaymentIntentSnapshot
}

// Payer returns the contact of whichever variant is populated.
func (o *CanonicalPaymentObject) Payer() Payer {
	switch {
	case o == nil:
		return Payer{}
	case o.Session != nil:
		return o.Session.Payer
	case o.Invoice != nil:
		return o.Invoice.Payer
	case o.PaymentIntent != nil:
		p := o.PaymentIntent.Payer
		if p.Email == "" && o.PaymentIntent.Session != nil {
			return o.PaymentIntent.Session.Payer
		}
		return p
	}
	return Payer{}
}
