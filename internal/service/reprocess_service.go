package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"
	"payment-event-pipeline/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReprocessServiceImpl implements ports.ReprocessService.
type ReprocessServiceImpl struct {
	events   ports.WebhookEventRepository
	pipeline *PipelineServiceImpl
	now      func() time.Time
	log      zerolog.Logger
}

// NewReprocessService creates a new ReprocessServiceImpl.
func NewReprocessService(events ports.WebhookEventRepository, pipeline *PipelineServiceImpl, log zerolog.Logger) *ReprocessServiceImpl {
	return &ReprocessServiceImpl{events: events, pipeline: pipeline, now: time.Now, log: log}
}

// manualPayload is stored as the raw payload of an operator-supplied event.
type manualPayload struct {
	Source    string `json:"source"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	ObjectID  string `json:"object_id"`
	Operator  string `json:"operator"`
	CreatedAt int64  `json:"created_at"`
}

// Reprocess re-drives a stored event from the refetch stage. Signatures are
// never re-verified. A terminal record is only re-run when Force is set.
func (s *ReprocessServiceImpl) Reprocess(ctx context.Context, req domain.ReprocessRequest) (*domain.PipelineResult, error) {
	if (req.ProviderEventID == "") == (req.RecordID == nil) {
		return nil, apperror.Validation("exactly one of provider_event_id or record_id is required")
	}

	rec, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec, err = s.recordManual(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	log := s.log.With().
		Str("event_id", rec.ProviderEventID).
		Str("record_id", rec.ID.String()).
		Str("operator", req.Operator).
		Bool("force", req.Force).
		Logger()

	if rec.IsTerminal() && !req.Force {
		log.Info().Msg("reprocess: record already finalized, returning stored outcome")
		return replayResult(rec), nil
	}

	if err := s.events.NoteReprocess(ctx, rec.ProviderEventID, req.Operator, s.now()); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, apperror.ErrNotFound("webhook event")
		}
		return nil, apperror.ErrDatabaseError(err)
	}
	log.Info().Msg("reprocess: re-driving event")

	return s.pipeline.Drive(ctx, rec, domain.FinalizeOptions{Override: req.Force})
}

// Inspect accepts a record id or a provider event id.
func (s *ReprocessServiceImpl) Inspect(ctx context.Context, selector string) (*domain.WebhookEventRecord, error) {
	var (
		rec *domain.WebhookEventRecord
		err error
	)
	if id, parseErr := uuid.Parse(selector); parseErr == nil {
		rec, err = s.events.GetByID(ctx, id)
	} else {
		rec, err = s.events.Lookup(ctx, selector)
	}
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if rec == nil {
		return nil, apperror.ErrNotFound("webhook event")
	}
	return rec, nil
}

func (s *ReprocessServiceImpl) load(ctx context.Context, req domain.ReprocessRequest) (*domain.WebhookEventRecord, error) {
	if req.RecordID != nil {
		rec, err := s.events.GetByID(ctx, *req.RecordID)
		if err != nil {
			return nil, apperror.ErrDatabaseError(err)
		}
		if rec == nil {
			return nil, apperror.ErrNotFound("webhook event")
		}
		return rec, nil
	}

	rec, err := s.events.Lookup(ctx, req.ProviderEventID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return rec, nil
}

// recordManual creates the ledger row for an event the pipeline never
// received, using the type and object id the operator supplied.
func (s *ReprocessServiceImpl) recordManual(ctx context.Context, req domain.ReprocessRequest) (*domain.WebhookEventRecord, error) {
	if req.EventType == "" || req.ObjectID == "" {
		return nil, apperror.ErrNotFound("webhook event")
	}

	now := s.now()
	payload, err := json.Marshal(manualPayload{
		Source:    "operator",
		ID:        req.ProviderEventID,
		Type:      req.EventType,
		ObjectID:  req.ObjectID,
		Operator:  req.Operator,
		CreatedAt: now.Unix(),
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal manual event: %w", err))
	}

	rec, err := s.events.RecordReceived(ctx, domain.NewWebhookEventRecord(domain.VerifiedEvent{
		ID:         req.ProviderEventID,
		Type:       req.EventType,
		ObjectID:   req.ObjectID,
		RawPayload: payload,
	}, now))
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	s.log.Info().
		Str("event_id", rec.ProviderEventID).
		Str("event_type", rec.EventType).
		Str("operator", req.Operator).
		Msg("reprocess: recorded operator-supplied event")
	return rec, nil
}
