package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calctree-backend/internal/apperrors"
)

// ErrorEnvelope is the error shape every endpoint returns:
// {error: <kind>, message: <human text>}.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, ErrorEnvelope{Error: kind, Message: message})
}

// RespondAppError maps a domain error to its status and kind. Anything
// outside the taxonomy becomes a generic 500 so internals never leak.
func RespondAppError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	kind := apperrors.Kind(err)
	message := err.Error()
	if status == 500 {
		message = "An unexpected error occurred"
	}
	RespondError(c, status, kind, message)
}
