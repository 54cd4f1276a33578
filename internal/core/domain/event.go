package domain

// Provider event types the pipeline knows how to fulfil.
const (
	EventCheckoutSessionCompleted             = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventInvoicePaid                          = "invoice.paid"
	EventInvoicePaymentSucceeded              = "invoice.payment_succeeded"
	EventPaymentIntentSucceeded               = "payment_intent.succeeded"
)

// VerifiedEvent is the minimal data trusted after signature verification.
// Nothing from the inner object is used except its id.
type VerifiedEvent struct {
	ID         string
	Type       string
	ObjectID   string
	RawPayload []byte
}

var eventKinds = map[string]CanonicalKind{
	EventCheckoutSessionCompleted:             CanonicalKindCheckoutSession,
	EventCheckoutSessionAsyncPaymentSucceeded: CanonicalKindCheckoutSession,
	EventInvoicePaid:                          CanonicalKindInvoice,
	EventInvoicePaymentSucceeded:              CanonicalKindInvoice,
	EventPaymentIntentSucceeded:               CanonicalKindPaymentIntent,
}

// CanonicalKindFor maps a provider event type to the object that must be refetched.
func CanonicalKindFor(eventType string) (CanonicalKind, bool) {
	kind, ok := eventKinds[eventType]
	return kind, ok
}

// IsSupportedEventType reports whether the dispatcher can fulfil eventType.
func IsSupportedEventType(eventType string) bool {
	_, ok := eventKinds[eventType]
	return ok
}
