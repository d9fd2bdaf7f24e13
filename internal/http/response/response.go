package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/station-marker/internal/platform/apierr"
)

// ErrorEnvelope is the body of every failed request. Details and Raw carry
// diagnostics verbatim and are omitted when empty.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

func RespondError(c *gin.Context, err *apierr.Error) {
	if err == nil {
		err = apierr.New(http.StatusInternalServerError, "internal_error", nil)
	}
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	msg := "unknown error"
	if err.Err != nil {
		msg = err.Err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error:   msg,
		Code:    err.Code,
		Details: err.Details,
		Raw:     err.Raw,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
