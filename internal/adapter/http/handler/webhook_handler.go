package handler

import (
	"errors"
	"io"
	"net/http"

	"payment-event-pipeline/internal/adapter/http/dto"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"
	"payment-event-pipeline/pkg/apperror"
	"payment-event-pipeline/pkg/response"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the provider's timestamped HMAC signature.
const SignatureHeader = "Stripe-Signature"

// WebhookHandler receives provider notifications.
type WebhookHandler struct {
	pipeline ports.PipelineService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(pipeline ports.PipelineService) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline}
}

// Receive handles POST /webhooks/provider.
// The body is read raw: the signature covers the exact bytes.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		response.Error(c, apperror.Validation("unreadable request body"))
		return
	}

	result, err := h.pipeline.Ingest(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, result)
}

// writeResult answers 200 for terminal outcomes and 500 for error outcomes,
// so the provider redelivers only what is still retryable.
func writeResult(c *gin.Context, result *domain.PipelineResult) {
	body := dto.ToPipelineResultResponse(result)
	if result.Outcome.IsError() {
		response.ErrorWithDetails(c, apperror.ErrProcessingFailed(result.Outcome.Reason), body)
		return
	}
	response.OK(c, body)
}
