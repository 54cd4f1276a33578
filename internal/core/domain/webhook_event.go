package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventState is the lifecycle state of a WebhookEventRecord.
type EventState string

const (
	EventStateReceived  EventState = "received"
	EventStateProcessed EventState = "processed"
	EventStateIgnored   EventState = "ignored"
)

// IsTerminal returns true for processed and ignored.
func (s EventState) IsTerminal() bool {
	return s == EventStateProcessed || s == EventStateIgnored
}

// LastError is the diagnostic left behind by the most recent failed attempt.
type LastError struct {
	Kind    OutcomeKind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// WebhookEventRecord is the durable ledger row for one provider event id.
// It is both the idempotency guard and the audit trail; rows are never deleted.
type WebhookEventRecord struct {
	ID                uuid.UUID   `json:"id"`
	ProviderEventID   string      `json:"provider_event_id"`
	EventType         string      `json:"event_type"`
	ObjectID          string      `json:"object_id"`
	RawPayload        []byte      `json:"-"`
	ReceivedAt        time.Time   `json:"received_at"`
	FinalizedAt       *time.Time  `json:"finalized_at,omitempty"`
	FinalState        *EventState `json:"final_state,omitempty"`
	OutcomeReason     *string     `json:"outcome_reason,omitempty"`
	LinkedOrderID     *string     `json:"linked_order_id,omitempty"`
	LastError         *LastError  `json:"last_error,omitempty"`
	AttemptCount      int         `json:"attempt_count"`
	ReprocessCount    int         `json:"reprocess_count"`
	LastReprocessedBy *string     `json:"last_reprocessed_by,omitempty"`
	LastReprocessedAt *time.Time  `json:"last_reprocessed_at,omitempty"`
	LeaseOwner        *string     `json:"-"`
	LeaseExpiresAt    *time.Time  `json:"-"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewWebhookEventRecord builds a fresh, non-terminal record for a verified event.
func NewWebhookEventRecord(evt VerifiedEvent, now time.Time) *WebhookEventRecord {
	return &WebhookEventRecord{
		ID:              uuid.New(),
		ProviderEventID: evt.ID,
		EventType:       evt.Type,
		ObjectID:        evt.ObjectID,
		RawPayload:      evt.RawPayload,
		ReceivedAt:      now,
		UpdatedAt:       now,
	}
}

// State derives the lifecycle state from FinalizedAt and FinalState.
func (r *WebhookEventRecord) State() EventState {
	if r.FinalizedAt == nil || r.FinalState == nil {
		return EventStateReceived
	}
	return *r.FinalState
}

// IsTerminal returns true once the record has been finalized.
func (r *WebhookEventRecord) IsTerminal() bool {
	return r.State().IsTerminal()
}

// StoredOutcome rebuilds the terminal outcome recorded on the row.
// ok is false while the record is still retryable.
func (r *WebhookEventRecord) StoredOutcome() (Outcome, bool) {
	switch r.State() {
	case EventStateProcessed:
		orderID := ""
		if r.LinkedOrderID != nil {
			orderID = *r.LinkedOrderID
		}
		return Processed(orderID), true
	case EventStateIgnored:
		reason := ""
		if r.OutcomeReason != nil {
			reason = *r.OutcomeReason
		}
		return Ignored(reason), true
	}
	return Outcome{}, false
}

// LeaseHeldAt reports whether an unexpired attempt lease exists at now.
func (r *WebhookEventRecord) LeaseHeldAt(now time.Time) bool {
	return r.LeaseExpiresAt != nil && r.LeaseExpiresAt.After(now)
}

// FinalizeOptions controls the guard on ledger writes.
// Override is only ever set by an operator-forced reprocess and lets the
// write touch a record that is already terminal.
type FinalizeOptions struct {
	Override bool
}
