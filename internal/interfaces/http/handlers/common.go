// Package handlers implements the gin handlers of the classification API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cnsipo-attrs/internal/interfaces/http/middleware"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps err onto an HTTP status through its error code and aborts
// the chain. Server-side failures are masked with the default message.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.CodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{
		Code:      code.String(),
		Message:   errors.DefaultMessageForCode(code),
		RequestID: middleware.GetRequestID(c),
	}
	var appErr *errors.AppError
	if status < http.StatusInternalServerError && errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// badRequest aborts with an invalid-parameter error.
func badRequest(c *gin.Context, message, detail string) {
	writeError(c, errors.InvalidParam(message).WithDetail(detail))
}

//Personal.AI order the ending
