package dto

import (
	"time"

	"payment-event-pipeline/internal/core/domain"
)

// ReprocessRequest is the request body for operator reprocessing.
// Exactly one of ProviderEventID and RecordID must be set.
type ReprocessRequest struct {
	ProviderEventID string `json:"provider_event_id" binding:"omitempty,max=255,safe_id"`
	RecordID        string `json:"record_id" binding:"omitempty,uuid"`
	Force           bool   `json:"force"`
	EventType       string `json:"event_type" binding:"omitempty,max=100,safe_id"`
	ObjectID        string `json:"object_id" binding:"omitempty,max=255,safe_id"`
}

// OutcomeResponse is the tagged dispatch outcome.
type OutcomeResponse struct {
	Kind    string `json:"kind"`
	OrderID string `json:"order_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// LastErrorResponse describes the most recent failed attempt.
type LastErrorResponse struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	At      string `json:"at"`
}

// PipelineResultResponse is returned by both the webhook and reprocess endpoints.
type PipelineResultResponse struct {
	RecordID        string             `json:"record_id"`
	ProviderEventID string             `json:"provider_event_id"`
	EventType       string             `json:"event_type"`
	State           string             `json:"state"`
	Outcome         OutcomeResponse    `json:"outcome"`
	Replay          bool               `json:"replay"`
	AttemptCount    int                `json:"attempt_count"`
	LastError       *LastErrorResponse `json:"last_error,omitempty"`
	AttemptOutcome  *OutcomeResponse   `json:"attempt_outcome,omitempty"`
}

// WebhookEventResponse is the operator view of a ledger record.
type WebhookEventResponse struct {
	RecordID          string             `json:"record_id"`
	ProviderEventID   string             `json:"provider_event_id"`
	EventType         string             `json:"event_type"`
	ObjectID          string             `json:"object_id"`
	State             string             `json:"state"`
	OutcomeReason     *string            `json:"outcome_reason,omitempty"`
	LinkedOrderID     *string            `json:"linked_order_id,omitempty"`
	ReceivedAt        string             `json:"received_at"`
	FinalizedAt       *string            `json:"finalized_at,omitempty"`
	AttemptCount      int                `json:"attempt_count"`
	ReprocessCount    int                `json:"reprocess_count"`
	LastReprocessedBy *string            `json:"last_reprocessed_by,omitempty"`
	LastReprocessedAt *string            `json:"last_reprocessed_at,omitempty"`
	LastError         *LastErrorResponse `json:"last_error,omitempty"`
	AttemptInProgress bool               `json:"attempt_in_progress"`
}

// ToPipelineResultResponse converts a pipeline result for the wire.
func ToPipelineResultResponse(r *domain.PipelineResult) PipelineResultResponse {
	return PipelineResultResponse{
		RecordID:        r.RecordID.String(),
		ProviderEventID: r.ProviderEventID,
		EventType:       r.EventType,
		State:           string(r.State),
		Outcome:         toOutcome(r.Outcome),
		Replay:          r.Replay,
		AttemptCount:    r.AttemptCount,
		LastError:       toLastError(r.LastError),
		AttemptOutcome:  toAttemptOutcome(r.AttemptOutcome),
	}
}

func toOutcome(o domain.Outcome) OutcomeResponse {
	return OutcomeResponse{Kind: string(o.Kind), OrderID: o.OrderID, Reason: o.Reason}
}

func toAttemptOutcome(o *domain.Outcome) *OutcomeResponse {
	if o == nil {
		return nil
	}
	out := toOutcome(*o)
	return &out
}

// ToWebhookEventResponse converts a stored record for the operator view.
func ToWebhookEventResponse(rec *domain.WebhookEventRecord, now time.Time) WebhookEventResponse {
	return WebhookEventResponse{
		RecordID:          rec.ID.String(),
		ProviderEventID:   rec.ProviderEventID,
		EventType:         rec.EventType,
		ObjectID:          rec.ObjectID,
		State:             string(rec.State()),
		OutcomeReason:     rec.OutcomeReason,
		LinkedOrderID:     rec.LinkedOrderID,
		ReceivedAt:        rec.ReceivedAt.UTC().Format(time.RFC3339),
		FinalizedAt:       formatTime(rec.FinalizedAt),
		AttemptCount:      rec.AttemptCount,
		ReprocessCount:    rec.ReprocessCount,
		LastReprocessedBy: rec.LastReprocessedBy,
		LastReprocessedAt: formatTime(rec.LastReprocessedAt),
		LastError:         toLastError(rec.LastError),
		AttemptInProgress: rec.LeaseHeldAt(now),
	}
}

func toLastError(le *domain.LastError) *LastErrorResponse {
	if le == nil {
		return nil
	}
	return &LastErrorResponse{
		Kind:    string(le.Kind),
		Code:    le.Code,
		Message: le.Message,
		At:      le.At.UTC().Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
