package service

import (
	"context"
	"fmt"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"

	"github.com/rs/zerolog"
)

// ConfirmationServiceImpl implements ports.ConfirmationService.
type ConfirmationServiceImpl struct {
	claims ports.SideEffectClaimRepository
	mailer ports.ConfirmationMailer
	log    zerolog.Logger
}

// NewConfirmationService creates a new ConfirmationServiceImpl.
func NewConfirmationService(claims ports.SideEffectClaimRepository, mailer ports.ConfirmationMailer, log zerolog.Logger) *ConfirmationServiceImpl {
	return &ConfirmationServiceImpl{claims: claims, mailer: mailer, log: log}
}

// Confirm sends the confirmation only if this caller wins the claim on the
// order. A failed send is recorded but the claim is kept.
func (s *ConfirmationServiceImpl) Confirm(ctx context.Context, req domain.ConfirmationRequest) error {
	res, err := s.claims.Claim(ctx, req.OrderID, domain.SideEffectConfirmationEmail)
	if err != nil {
		return fmt.Errorf("claim confirmation: %w", err)
	}
	if !res.Claimed {
		s.log.Debug().Str("order_id", req.OrderID).Msg("confirmation: already claimed")
		return nil
	}

	if sendErr := s.mailer.SendConfirmation(ctx, req); sendErr != nil {
		if err := s.claims.MarkDeliveryFailed(context.WithoutCancel(ctx), req.OrderID, domain.SideEffectConfirmationEmail, sendErr.Error()); err != nil {
			s.log.Error().Err(err).Str("order_id", req.OrderID).Msg("confirmation: failed to record delivery failure")
		}
		return fmt.Errorf("send confirmation: %w", sendErr)
	}

	if err := s.claims.MarkDelivered(context.WithoutCancel(ctx), req.OrderID, domain.SideEffectConfirmationEmail); err != nil {
		return fmt.Errorf("mark confirmation delivered: %w", err)
	}
	s.log.Info().Str("order_id", req.OrderID).Msg("confirmation: sent")
	return nil
}

// confirmationFor rebuilds what the e-mail needs from the canonical object.
func confirmationFor(orderID string, obj *domain.CanonicalPaymentObject) (domain.ConfirmationRequest, bool) {
	req, err := domain.BuildOrderUpsert(obj)
	if err != nil {
		return domain.ConfirmationRequest{}, false
	}
	return domain.ConfirmationRequest{
		OrderID:     orderID,
		Payer:       req.Payer,
		Currency:    req.Currency,
		AmountTotal: req.AmountTotal,
		Items:       req.Items,
	}, true
}
