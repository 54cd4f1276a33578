package handler

import (
	"time"

	"payment-event-pipeline/internal/adapter/http/dto"
	"payment-event-pipeline/internal/adapter/http/middleware"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"
	"payment-event-pipeline/pkg/apperror"
	"payment-event-pipeline/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReprocessHandler exposes the operator endpoints over stored webhook events.
type ReprocessHandler struct {
	reprocessSvc ports.ReprocessService
	now          func() time.Time
}

// NewReprocessHandler creates a new ReprocessHandler.
func NewReprocessHandler(reprocessSvc ports.ReprocessService) *ReprocessHandler {
	return &ReprocessHandler{reprocessSvc: reprocessSvc, now: time.Now}
}

// Reprocess handles POST /api/v1/admin/webhook-events/reprocess.
func (h *ReprocessHandler) Reprocess(c *gin.Context) {
	operatorID, ok := c.Get(middleware.CtxOperatorID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ReprocessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if (req.ProviderEventID == "") == (req.RecordID == "") {
		response.Error(c, apperror.Validation("exactly one of provider_event_id or record_id is required"))
		return
	}

	in := domain.ReprocessRequest{
		ProviderEventID: req.ProviderEventID,
		Force:           req.Force,
		EventType:       req.EventType,
		ObjectID:        req.ObjectID,
		Operator:        operatorID.(string),
	}
	resource := req.ProviderEventID
	if req.RecordID != "" {
		id, err := uuid.Parse(req.RecordID)
		if err != nil {
			response.Error(c, apperror.Validation("record_id must be a UUID"))
			return
		}
		in.RecordID = &id
		resource = id.String()
	}

	action := domain.AuditActionReprocess
	if req.Force {
		action = domain.AuditActionForcedReprocess
	}
	c.Set(middleware.CtxAuditAction, action)
	c.Set(middleware.CtxAuditResource, resource)

	result, err := h.reprocessSvc.Reprocess(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeResult(c, result)
}

// Inspect handles GET /api/v1/admin/webhook-events/:id.
// The id may be a record id or a provider event id.
func (h *ReprocessHandler) Inspect(c *gin.Context) {
	rec, err := h.reprocessSvc.Inspect(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWebhookEventResponse(rec, h.now()))
}
