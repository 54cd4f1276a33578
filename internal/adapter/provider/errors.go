package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"payment-event-pipeline/internal/core/domain"

	"github.com/stripe/stripe-go/v79"
)

// classify maps a Stripe client error onto the domain's refetch error sentinels.
// The original error stays wrapped for logging and for deadline checks.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return fmt.Errorf("%w: %w", domain.ErrNotFoundUpstream, err)
		case stripeErr.HTTPStatusCode == http.StatusUnauthorized || stripeErr.HTTPStatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: provider credentials: %w", domain.ErrConfiguration, err)
		case isRetryableStripeError(stripeErr):
			return fmt.Errorf("%w: %w", domain.ErrProviderTransient, err)
		default:
			return fmt.Errorf("%w: %w", domain.ErrProviderRejected, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		isRetryableNetworkError(err) || isRetryableSystemError(err) {
		return fmt.Errorf("%w: %w", domain.ErrProviderTransient, err)
	}

	// Anything unrecognised is retried rather than dropped.
	return fmt.Errorf("%w: %w", domain.ErrProviderTransient, err)
}

func isRetryableStripeError(e *stripe.Error) bool {
	// HTTP 500-599: provider down
	if e.HTTPStatusCode >= 500 && e.HTTPStatusCode < 600 {
		return true
	}
	if e.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	// throttling / locking
	switch e.Code {
	case stripe.ErrorCodeRateLimit, stripe.ErrorCodeLockTimeout:
		return true
	}
	return false
}

func isRetryableNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRetryableSystemError(err error) bool {
	// Connection Refused / Reset
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) &&
		(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound)
}
