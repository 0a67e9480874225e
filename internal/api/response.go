package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/contribhub/contrib-insights/internal/errors"
)

// ErrorResponse is the error payload returned by every endpoint
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), ErrorResponse{Error: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
