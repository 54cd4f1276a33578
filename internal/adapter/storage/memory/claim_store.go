package memory

import (
	"context"
	"sync"
	"time"

	"payment-event-pipeline/internal/core/domain"
)

type claimState struct {
	claimedAt time.Time
	sentAt    *time.Time
	lastError string
}

// ClaimStore implements ports.SideEffectClaimRepository in memory.
// Orders must be registered with AddOrder, mirroring rows the order ledger owns.
type ClaimStore struct {
	mu     sync.Mutex
	orders map[string]map[domain.SideEffect]*claimState
}

func NewClaimStore() *ClaimStore {
	return &ClaimStore{orders: make(map[string]map[domain.SideEffect]*claimState)}
}

// AddOrder registers an order row. Adding an existing order is a no-op.
func (s *ClaimStore) AddOrder(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		s.orders[orderID] = make(map[domain.SideEffect]*claimState)
	}
}

func (s *ClaimStore) Claim(ctx context.Context, orderID string, effect domain.SideEffect) (domain.ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	effects, ok := s.orders[orderID]
	if !ok {
		return domain.ClaimResult{}, domain.ErrOrderNotFound
	}
	if _, claimed := effects[effect]; claimed {
		return domain.ClaimResult{Claimed: false, RecordID: orderID}, nil
	}
	effects[effect] = &claimState{claimedAt: time.Now()}
	return domain.ClaimResult{Claimed: true, RecordID: orderID}, nil
}

func (s *ClaimStore) MarkDelivered(ctx context.Context, orderID string, effect domain.SideEffect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.state(orderID, effect); st != nil {
		now := time.Now()
		st.sentAt = &now
		st.lastError = ""
	}
	return nil
}

func (s *ClaimStore) MarkDeliveryFailed(ctx context.Context, orderID string, effect domain.SideEffect, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.state(orderID, effect); st != nil {
		st.lastError = cause
	}
	return nil
}

// Delivered reports whether effect was marked delivered for orderID.
func (s *ClaimStore) Delivered(orderID string, effect domain.SideEffect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(orderID, effect)
	return st != nil && st.sentAt != nil
}

// DeliveryError returns the recorded failure cause, if any.
func (s *ClaimStore) DeliveryError(orderID string, effect domain.SideEffect) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.state(orderID, effect); st != nil {
		return st.lastError
	}
	return ""
}

func (s *ClaimStore) state(orderID string, effect domain.SideEffect) *claimState {
	effects, ok := s.orders[orderID]
	if !ok {
		return nil
	}
	return effects[effect]
}
