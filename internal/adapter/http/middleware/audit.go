package middleware

import (
	"encoding/json"
	"time"

	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog records operator actions after the handler has run. Handlers opt
// in by setting CtxAuditAction (and CtxAuditResource) once the request is
// well-formed, so failed reprocess attempts are audited too.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		raw, exists := c.Get(CtxAuditAction)
		if !exists {
			return
		}
		action, ok := raw.(domain.AuditAction)
		if !ok || action == "" {
			return
		}

		var operatorID *string
		if op := c.GetString(CtxOperatorID); op != "" {
			operatorID = &op
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			OperatorID:   operatorID,
			Action:       action,
			ResourceType: "webhook_event",
			ResourceID:   c.GetString(CtxAuditResource),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}
