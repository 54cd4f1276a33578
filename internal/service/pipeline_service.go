package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-event-pipeline/config"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"
	"payment-event-pipeline/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PipelineServiceImpl implements ports.PipelineService.
//
// A delivery is verified, recorded in the idempotency ledger and, unless the
// record is already terminal, driven through refetch, dispatch and finalize
// while holding the record's attempt lease.
type PipelineServiceImpl struct {
	verifier      ports.EventVerifier
	events        ports.WebhookEventRepository
	refetcher     ports.CanonicalRefetcher
	dispatcher    *Dispatcher
	finalizer     *Finalizer
	cache         ports.OutcomeCache
	confirmations ports.ConfirmationService
	cfg           config.PipelineConfig
	now           func() time.Time
	log           zerolog.Logger
}

// NewPipelineService creates a new PipelineServiceImpl.
// cache and confirmations may be nil.
func NewPipelineService(
	verifier ports.EventVerifier,
	events ports.WebhookEventRepository,
	refetcher ports.CanonicalRefetcher,
	ledger ports.OrderLedger,
	cache ports.OutcomeCache,
	confirmations ports.ConfirmationService,
	cfg config.PipelineConfig,
	log zerolog.Logger,
) *PipelineServiceImpl {
	return &PipelineServiceImpl{
		verifier:      verifier,
		events:        events,
		refetcher:     refetcher,
		dispatcher:    NewDispatcher(ledger, log),
		finalizer:     NewFinalizer(events, cfg.FinalizeTimeout, log),
		cache:         cache,
		confirmations: confirmations,
		cfg:           cfg,
		now:           time.Now,
		log:           log,
	}
}

// Ingest handles one inbound provider notification.
func (s *PipelineServiceImpl) Ingest(ctx context.Context, rawBody []byte, signatureHeader string) (*domain.PipelineResult, error) {
	evt, err := s.verifier.Verify(rawBody, signatureHeader)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConfiguration):
			s.log.Error().Err(err).Msg("pipeline: signature verification is misconfigured")
			return nil, apperror.ErrConfiguration(err)
		case errors.Is(err, domain.ErrMissingSignature):
			return nil, apperror.ErrMissingSignature()
		}
		s.log.Warn().Err(err).Msg("pipeline: rejected unverifiable notification")
		return nil, apperror.ErrInvalidSignature(err)
	}

	// Redis fast path; Postgres stays authoritative on a miss or error.
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, evt.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", evt.ID).Msg("pipeline: outcome cache read failed, falling through to db")
		}
		if cached != nil {
			cached.Replay = true
			return cached, nil
		}
	}

	rec, err := s.events.RecordReceived(ctx, domain.NewWebhookEventRecord(evt, s.now()))
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	if rec.IsTerminal() {
		result := replayResult(rec)
		s.cacheResult(ctx, result)
		s.log.Info().
			Str("event_id", rec.ProviderEventID).
			Str("outcome", string(result.Outcome.Kind)).
			Msg("pipeline: replay of finalized event")
		return result, nil
	}

	return s.Drive(ctx, rec, domain.FinalizeOptions{})
}

// Drive runs refetch, dispatch and finalize for rec under the attempt lease.
// The webhook path and the operator reprocess path both end up here.
func (s *PipelineServiceImpl) Drive(ctx context.Context, rec *domain.WebhookEventRecord, opts domain.FinalizeOptions) (*domain.PipelineResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	owner := uuid.NewString()
	result, acquired, err := s.acquire(runCtx, rec, owner, opts)
	if err != nil || !acquired {
		return result, err
	}
	defer s.releaseLease(ctx, rec.ProviderEventID, owner)
	if opts.Override {
		s.evict(ctx, rec.ProviderEventID)
	}

	log := s.log.With().
		Str("event_id", rec.ProviderEventID).
		Str("event_type", rec.EventType).
		Str("record_id", rec.ID.String()).
		Logger()

	outcome, obj, hardErr := s.run(runCtx, rec)

	stored, err := s.finalizer.Apply(ctx, rec, outcome, opts)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	storedOutcome := outcome
	if stored.IsTerminal() {
		storedOutcome, _ = stored.StoredOutcome()
	}
	// A failed forced run reports the failure even though the record keeps
	// its terminal state.
	reported := storedOutcome
	if opts.Override && outcome.IsError() {
		reported = outcome
	}
	result = domain.ResultFromRecord(stored, reported, false)
	result.AttemptOutcome = &outcome

	logEvt := log.Info()
	if outcome.IsError() {
		logEvt = log.Warn().Str("detail", outcome.Detail)
	}
	logEvt.Str("outcome", string(outcome.Kind)).
		Str("reason", outcome.Reason).
		Str("order_id", outcome.OrderID).
		Int("attempt_count", stored.AttemptCount).
		Msg("pipeline: attempt finished")

	if hardErr != nil {
		return nil, apperror.ErrConfiguration(hardErr)
	}

	if stored.IsTerminal() {
		s.cacheResult(ctx, domain.ResultFromRecord(stored, storedOutcome, false))
	}
	if outcome.Kind == domain.OutcomeProcessed && reported.Kind == domain.OutcomeProcessed {
		s.confirm(ctx, reported.OrderID, obj, log)
	}
	return result, nil
}

// acquire takes the attempt lease. When another attempt holds it, it polls
// until that attempt finalizes, the lease frees up or the run deadline passes.
func (s *PipelineServiceImpl) acquire(ctx context.Context, rec *domain.WebhookEventRecord, owner string, opts domain.FinalizeOptions) (*domain.PipelineResult, bool, error) {
	for {
		now := s.now()
		ok, err := s.events.AcquireLease(ctx, rec.ProviderEventID, owner, now, now.Add(s.cfg.LeaseTTL), opts)
		if err != nil {
			if ctx.Err() != nil {
				return s.inProgress(rec), false, nil
			}
			return nil, false, apperror.ErrDatabaseError(err)
		}
		if ok {
			return nil, true, nil
		}

		cur, err := s.events.Lookup(ctx, rec.ProviderEventID)
		if err != nil {
			if ctx.Err() != nil {
				return s.inProgress(rec), false, nil
			}
			return nil, false, apperror.ErrDatabaseError(err)
		}
		if cur == nil {
			return nil, false, apperror.ErrNotFound("webhook event")
		}
		if cur.IsTerminal() && !opts.Override {
			return replayResult(cur), false, nil
		}
		if !cur.LeaseHeldAt(s.now()) {
			continue
		}

		select {
		case <-ctx.Done():
			s.log.Warn().Str("event_id", rec.ProviderEventID).Msg("pipeline: gave up waiting for concurrent attempt")
			return s.inProgress(cur), false, nil
		case <-time.After(s.cfg.LeasePollInterval):
		}
	}
}

// run performs refetch and dispatch. The returned error is set only for
// configuration problems, which must surface as a hard failure.
func (s *PipelineServiceImpl) run(ctx context.Context, rec *domain.WebhookEventRecord) (domain.Outcome, *domain.CanonicalPaymentObject, error) {
	if !domain.IsSupportedEventType(rec.EventType) {
		return domain.Ignored(domain.ReasonUnsupportedEventType), nil, nil
	}

	refetchCtx, cancel := context.WithTimeout(ctx, s.cfg.RefetchTimeout)
	obj, err := s.refetcher.Refetch(refetchCtx, rec.EventType, rec.ObjectID)
	cancel()
	if err != nil {
		outcome := refetchOutcome(err)
		if errors.Is(err, domain.ErrConfiguration) {
			s.log.Error().Err(err).Str("event_id", rec.ProviderEventID).Msg("pipeline: provider credentials rejected")
			return outcome, nil, err
		}
		return outcome, nil, nil
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()
	return s.dispatcher.Dispatch(dispatchCtx, rec.EventType, obj), obj, nil
}

// refetchOutcome maps a refetch failure to an outcome variant.
func refetchOutcome(err error) domain.Outcome {
	switch {
	case errors.Is(err, domain.ErrUnsupportedEventType):
		return domain.Ignored(domain.ReasonUnsupportedEventType)
	case errors.Is(err, domain.ErrNotFoundUpstream):
		return domain.Ignored(domain.ReasonObjectNotFound)
	case errors.Is(err, domain.ErrConfiguration):
		return domain.Fatal(domain.ReasonProviderConfig, err.Error())
	case errors.Is(err, domain.ErrProviderRejected):
		return domain.Fatal(domain.ReasonProviderRejected, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return domain.Transient(domain.ReasonProviderTimeout, err.Error())
	}
	return domain.Transient(domain.ReasonProviderUnavailable, err.Error())
}

func (s *PipelineServiceImpl) confirm(ctx context.Context, orderID string, obj *domain.CanonicalPaymentObject, log zerolog.Logger) {
	if s.confirmations == nil || obj == nil {
		return
	}
	req, ok := confirmationFor(orderID, obj)
	if !ok {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ConfirmTimeout)
	defer cancel()
	if err := s.confirmations.Confirm(cctx, req); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("pipeline: confirmation failed")
	}
}

func (s *PipelineServiceImpl) releaseLease(ctx context.Context, providerEventID, owner string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FinalizeTimeout)
	defer cancel()
	if err := s.events.ReleaseLease(rctx, providerEventID, owner); err != nil {
		s.log.Warn().Err(err).Str("event_id", providerEventID).Msg("pipeline: lease release failed")
	}
}

func (s *PipelineServiceImpl) cacheResult(ctx context.Context, result *domain.PipelineResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), result, s.cfg.OutcomeCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("event_id", result.ProviderEventID).Msg("pipeline: outcome cache write failed")
	}
}

// evict drops a cached replay so deliveries during a forced run read Postgres.
func (s *PipelineServiceImpl) evict(ctx context.Context, providerEventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, providerEventID); err != nil {
		s.log.Warn().Err(err).Str("event_id", providerEventID).Msg("pipeline: outcome cache evict failed")
	}
}

func (s *PipelineServiceImpl) inProgress(rec *domain.WebhookEventRecord) *domain.PipelineResult {
	return domain.ResultFromRecord(rec, domain.Transient(domain.ReasonAttemptInProgress,
		fmt.Sprintf("another attempt holds the lease for %s", rec.ProviderEventID)), false)
}

func replayResult(rec *domain.WebhookEventRecord) *domain.PipelineResult {
	outcome, _ := rec.StoredOutcome()
	return domain.ResultFromRecord(rec, outcome, true)
}
