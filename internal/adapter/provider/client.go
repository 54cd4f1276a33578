package provider

import (
	"net/http"
	"time"

	"payment-event-pipeline/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// NewStripeClient builds a Stripe API client. When cfg.APIURL is set
// (stripe-mock, a test server) all backends point at it.
func NewStripeClient(cfg config.ProviderConfig, httpClient *http.Client) *client.API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	backendCfg := func(defaultURL string) *stripe.BackendConfig {
		url := defaultURL
		if cfg.APIURL != "" {
			url = cfg.APIURL
		}
		return &stripe.BackendConfig{
			URL:               stripe.String(url),
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
		}
	}

	return client.New(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg(stripe.APIURL)),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg(stripe.ConnectURL)),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg(stripe.UploadsURL)),
	})
}
