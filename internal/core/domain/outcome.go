package domain

import "github.com/google/uuid"

// OutcomeKind tags an orchestration outcome.
type OutcomeKind string

const (
	OutcomeProcessed      OutcomeKind = "processed"
	OutcomeIgnored        OutcomeKind = "ignored"
	OutcomeErrorTransient OutcomeKind = "error_transient"
	OutcomeErrorFatal     OutcomeKind = "error_fatal"
)

// Outcome reasons recorded on the ledger and returned to callers.
const (
	ReasonUnsupportedEventType = "unsupported-event-type"
	ReasonMissingExpansions    = "missing-expansions"
	ReasonPaymentNotSettled    = "payment-not-settled"
	ReasonObjectNotFound       = "canonical-object-not-found"
	ReasonProviderTimeout      = "provider-timeout"
	ReasonProviderUnavailable  = "provider-unavailable"
	ReasonProviderRejected     = "provider-rejected-request"
	ReasonProviderConfig       = "provider-configuration"
	ReasonLedgerTimeout        = "ledger-timeout"
	ReasonLedgerUnavailable    = "ledger-unavailable"
	ReasonLedgerNoOrder        = "ledger-returned-no-order"
	ReasonAttemptInProgress    = "attempt-in-progress"
)

// Outcome is the tagged result of one dispatch.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	OrderID string      `json:"order_id,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Detail  string      `json:"-"`
}

func Processed(orderID string) Outcome {
	return Outcome{Kind: OutcomeProcessed, OrderID: orderID}
}

func Ignored(reason string) Outcome {
	return Outcome{Kind: OutcomeIgnored, Reason: reason}
}

func Transient(reason, detail string) Outcome {
	return Outcome{Kind: OutcomeErrorTransient, Reason: reason, Detail: detail}
}

func Fatal(reason, detail string) Outcome {
	return Outcome{Kind: OutcomeErrorFatal, Reason: reason, Detail: detail}
}

// IsTerminal returns true for processed and ignored.
func (o Outcome) IsTerminal() bool {
	return o.Kind == OutcomeProcessed || o.Kind == OutcomeIgnored
}

// IsError returns true for the retryable error variants.
func (o Outcome) IsError() bool {
	return o.Kind == OutcomeErrorTransient || o.Kind == OutcomeErrorFatal
}

// PipelineResult is what both the webhook endpoint and the operator endpoint report.
type PipelineResult struct {
	RecordID        uuid.UUID  `json:"record_id"`
	ProviderEventID string     `json:"provider_event_id"`
	EventType       string     `json:"event_type"`
	State           EventState `json:"state"`
	Outcome         Outcome    `json:"outcome"`
	Replay          bool       `json:"replay"`
	AttemptCount    int        `json:"attempt_count"`
	LastError       *LastError `json:"last_error,omitempty"`
	// AttemptOutcome is what this call's own run produced. It is unset on
	// replays and can differ from Outcome when a forced run hit a terminal record.
	AttemptOutcome *Outcome `json:"attempt_outcome,omitempty"`
}

// ResultFromRecord reports the stored state of rec with the given outcome.
func ResultFromRecord(rec *WebhookEventRecord, outcome Outcome, replay bool) *PipelineResult {
	return &PipelineResult{
		RecordID:        rec.ID,
		ProviderEventID: rec.ProviderEventID,
		EventType:       rec.EventType,
		State:           rec.State(),
		Outcome:         outcome,
		Replay:          replay,
		AttemptCount:    rec.AttemptCount,
		LastError:       rec.LastError,
	}
}
