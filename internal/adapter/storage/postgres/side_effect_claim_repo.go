package postgres

import (
	"context"
	"errors"
	"fmt"

	"payment-event-pipeline/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// sideEffectColumns whitelists the order columns each side effect may touch.
// Column names are never taken from input.
var sideEffectColumns = map[domain.SideEffect]struct {
	claimedAt string
	sentAt    string
	lastError string
}{
	domain.SideEffectConfirmationEmail: {
		claimedAt: "confirmation_email_claimed_at",
		sentAt:    "confirmation_email_sent_at",
		lastError: "confirmation_email_error",
	},
}

// SideEffectClaimRepo implements ports.SideEffectClaimRepository on the
// order ledger's own orders table.
type SideEffectClaimRepo struct {
	pool Pool
}

// NewSideEffectClaimRepo creates a new SideEffectClaimRepo.
func NewSideEffectClaimRepo(pool Pool) *SideEffectClaimRepo {
	return &SideEffectClaimRepo{pool: pool}
}

// Claim sets the claim timestamp only if nobody has set it yet.
// Exactly one concurrent caller gets Claimed == true.
func (r *SideEffectClaimRepo) Claim(ctx context.Context, orderID string, effect domain.SideEffect) (domain.ClaimResult, error) {
	cols, ok := sideEffectColumns[effect]
	if !ok {
		return domain.ClaimResult{}, fmt.Errorf("claim side effect: unknown effect %q", effect)
	}

	query := fmt.Sprintf(`UPDATE orders SET %[1]s = now()
		WHERE id = $1 AND %[1]s IS NULL
		RETURNING id`, cols.claimedAt)

	var id string
	err := r.pool.QueryRow(ctx, query, orderID).Scan(&id)
	if err == nil {
		return domain.ClaimResult{Claimed: true, RecordID: id}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ClaimResult{}, fmt.Errorf("claim side effect: %w", err)
	}

	// No row updated: either someone else holds the claim or the order is unknown.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return domain.ClaimResult{}, fmt.Errorf("claim side effect: %w", err)
	}
	if !exists {
		return domain.ClaimResult{}, domain.ErrOrderNotFound
	}
	return domain.ClaimResult{Claimed: false, RecordID: orderID}, nil
}

// MarkDelivered records a successful delivery. The claim is kept.
func (r *SideEffectClaimRepo) MarkDelivered(ctx context.Context, orderID string, effect domain.SideEffect) error {
	cols, ok := sideEffectColumns[effect]
	if !ok {
		return fmt.Errorf("mark side effect delivered: unknown effect %q", effect)
	}

	query := fmt.Sprintf(`UPDATE orders SET %s = now(), %s = NULL WHERE id = $1`, cols.sentAt, cols.lastError)
	if _, err := r.pool.Exec(ctx, query, orderID); err != nil {
		return fmt.Errorf("mark side effect delivered: %w", err)
	}
	return nil
}

// MarkDeliveryFailed records why delivery failed. The claim is kept, so the
// effect is not retried automatically.
func (r *SideEffectClaimRepo) MarkDeliveryFailed(ctx context.Context, orderID string, effect domain.SideEffect, cause string) error {
	cols, ok := sideEffectColumns[effect]
	if !ok {
		return fmt.Errorf("mark side effect failed: unknown effect %q", effect)
	}

	query := fmt.Sprintf(`UPDATE orders SET %s = $2 WHERE id = $1`, cols.lastError)
	if _, err := r.pool.Exec(ctx, query, orderID, cause); err != nil {
		return fmt.Errorf("mark side effect failed: %w", err)
	}
	return nil
}
