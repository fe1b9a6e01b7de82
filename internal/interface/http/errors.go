package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/internal/application"
	"github.com/Pari658/Expense-Management/pkg/response"
	"github.com/Pari658/Expense-Management/pkg/validation"
)

// writeError maps service errors onto HTTP status codes. Unknown errors are
// 500 with the underlying message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *application.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, application.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, application.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, application.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, application.ErrNotFound):
			status = http.StatusNotFound
		}
		response.Error[any](c, status, appErr.Msg, nil)
		return
	}
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(response.RequestIDKey),
		}).Error("request failed")
	}
	response.Error[any](c, http.StatusInternalServerError, "Server Error: "+err.Error(), nil)
}

func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, validation.Summary(err), validation.ToDetails(err))
}
