package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"payment-event-pipeline/internal/adapter/storage/memory"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfirmation() domain.ConfirmationRequest {
	return domain.ConfirmationRequest{
		OrderID:     "ord_1",
		Payer:       domain.Payer{Email: "buyer@example.com"},
		Currency:    "usd",
		AmountTotal: 4200,
		Items:       []domain.OrderItem{{PriceID: "price_1", Quantity: 2, AmountTotal: 4200}},
	}
}

func TestConfirmationService_ClaimedAndSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	claims := mocks.NewMockSideEffectClaimRepository(ctrl)
	mailer := mocks.NewMockConfirmationMailer(ctrl)
	svc := NewConfirmationService(claims, mailer, newTestLogger())

	gomock.InOrder(
		claims.EXPECT().Claim(gomock.Any(), "ord_1", domain.SideEffectConfirmationEmail).
			Return(domain.ClaimResult{Claimed: true, RecordID: "ord_1"}, nil),
		mailer.EXPECT().SendConfirmation(gomock.Any(), testConfirmation()).Return(nil),
		claims.EXPECT().MarkDelivered(gomock.Any(), "ord_1", domain.SideEffectConfirmationEmail).Return(nil),
	)

	require.NoError(t, svc.Confirm(context.Background(), testConfirmation()))
}

func TestConfirmationService_AlreadyClaimed(t *testing.T) {
	ctrl := gomock.NewController(t)
	claims := mocks.NewMockSideEffectClaimRepository(ctrl)
	mailer := mocks.NewMockConfirmationMailer(ctrl)
	svc := NewConfirmationService(claims, mailer, newTestLogger())

	claims.EXPECT().Claim(gomock.Any(), "ord_1", domain.SideEffectConfirmationEmail).
		Return(domain.ClaimResult{Claimed: false}, nil)

	require.NoError(t, svc.Confirm(context.Background(), testConfirmation()))
}

func TestConfirmationService_SendFailureKeepsClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	claims := mocks.NewMockSideEffectClaimRepository(ctrl)
	mailer := mocks.NewMockConfirmationMailer(ctrl)
	svc := NewConfirmationService(claims, mailer, newTestLogger())

	smtpErr := errors.New("421 try later")
	claims.EXPECT().Claim(gomock.Any(), "ord_1", gomock.Any()).Return(domain.ClaimResult{Claimed: true}, nil)
	mailer.EXPECT().SendConfirmation(gomock.Any(), gomock.Any()).Return(smtpErr)
	claims.EXPECT().MarkDeliveryFailed(gomock.Any(), "ord_1", domain.SideEffectConfirmationEmail, "421 try later").Return(nil)

	err := svc.Confirm(context.Background(), testConfirmation())
	assert.ErrorIs(t, err, smtpErr)
}

func TestConfirmationService_ClaimError(t *testing.T) {
	ctrl := gomock.NewController(t)
	claims := mocks.NewMockSideEffectClaimRepository(ctrl)
	mailer := mocks.NewMockConfirmationMailer(ctrl)
	svc := NewConfirmationService(claims, mailer, newTestLogger())

	claims.EXPECT().Claim(gomock.Any(), "ord_1", gomock.Any()).Return(domain.ClaimResult{}, domain.ErrOrderNotFound)

	err := svc.Confirm(context.Background(), testConfirmation())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

type countingMailer struct {
	mu   sync.Mutex
	sent int
}

func (m *countingMailer) SendConfirmation(ctx context.Context, req domain.ConfirmationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return nil
}

func TestConfirmationService_ConcurrentCallersSendOnce(t *testing.T) {
	claims := memory.NewClaimStore()
	claims.AddOrder("ord_1")
	mailer := &countingMailer{}
	svc := NewConfirmationService(claims, mailer, newTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Confirm(context.Background(), testConfirmation()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mailer.sent)
	assert.True(t, claims.Delivered("ord_1", domain.SideEffectConfirmationEmail))
}
