package service

import (
	"context"
	"testing"
	"time"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports/mocks"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			if log.Action != domain.AuditActionForcedReprocess {
				t.Errorf("expected FORCED_REPROCESS, got %s", log.Action)
			}
			close(done)
			return nil
		},
	)

	operator := "alice"
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		OperatorID:   &operator,
		Action:       domain.AuditActionForcedReprocess,
		ResourceType: "webhook_event",
		ResourceID:   "evt_1",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("audit log not persisted in time")
	}
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, newTestLogger())

	// Should not panic
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		Action:       domain.AuditActionReprocess,
		ResourceType: "webhook_event",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	time.Sleep(50 * time.Millisecond) // let goroutine run
}
