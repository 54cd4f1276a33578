package domain

// SideEffect names a post-processing action that may fire at most once per order.
type SideEffect string

const (
	SideEffectConfirmationEmail SideEffect = "confirmation_email"
)

// ClaimResult is the answer of the claim guard.
// Claimed is false when another caller already holds the claim.
type ClaimResult struct {
	Claimed  bool
	RecordID string
}

// ConfirmationRequest carries what the confirmation e-mail needs about a processed order.
type ConfirmationRequest struct {
	OrderID     string
	Payer       Payer
	Currency    string
	AmountTotal int64
	Items       []OrderItem
}
