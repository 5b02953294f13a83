package handlers

import (
	"errors"
	"net/http"

	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// APIError is the wire shape of every rejected operation.
type APIError struct {
	Message []string `json:"message"`
	Error   string   `json:"error"`
	Status  int      `json:"status"`
}

func RespondError(ctx *gin.Context, status int, label string, messages []string) {
	ctx.JSON(status, APIError{
		Message: messages,
		Error:   label,
		Status:  status,
	})
}

func RespondBadRequest(ctx *gin.Context, messages ...string) {
	RespondError(ctx, http.StatusBadRequest, "Bad Request", messages)
}

func RespondNotFound(ctx *gin.Context, messages ...string) {
	RespondError(ctx, http.StatusNotFound, "Not Found", messages)
}

func RespondInternal(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, "Internal Server Error", []string{"Internal server error"})
}

// RespondServiceError translates a lifecycle outcome into the wire shape.
// Classified errors carry their own status and label; anything else is a 500.
func RespondServiceError(ctx *gin.Context, err error) {
	var uerr *user.Error

	if errors.As(err, &uerr) {
		RespondError(ctx, uerr.Status(), uerr.Label(), uerr.Messages)
		return
	}

	RespondInternal(ctx)
}
