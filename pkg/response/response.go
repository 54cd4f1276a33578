package response

import (
	"errors"
	"net/http"
	"time"

	"payment-event-pipeline/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key the request-id middleware writes.
const RequestIDKey = "request_id"

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
// Details carries the pipeline result when a webhook fails after verification.
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	reqID, ts := meta(c)
	c.JSON(http.StatusOK, SuccessResponse{Data: data, RequestID: reqID, Timestamp: ts})
}

// Error maps err to its envelope. Anything that is not an *apperror.AppError
// is reported as SYS_000 without leaking the message.
func Error(c *gin.Context, err error) {
	ErrorWithDetails(c, err, nil)
}

// ErrorWithDetails is Error with an extra details payload.
func ErrorWithDetails(c *gin.Context, err error, details interface{}) {
	status, body := http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus
		body.ErrorCode, body.Message = appErr.Code, appErr.Message
	}

	body.Details = details
	body.RequestID, body.Timestamp = meta(c)
	c.JSON(status, body)
}

func meta(c *gin.Context) (requestID, timestamp string) {
	requestID = c.GetString(RequestIDKey)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return requestID, time.Now().UTC().Format(time.RFC3339)
}
