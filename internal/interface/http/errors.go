package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-finance-tracker/internal/application"
	"github.com/oksasatya/go-finance-tracker/pkg/helpers"
	"github.com/oksasatya/go-finance-tracker/pkg/response"
)

func statusOf(err error) int {
	switch application.CodeOf(err) {
	case application.CodeUnauthenticated:
		return http.StatusUnauthorized
	case application.CodeForbidden:
		return http.StatusForbidden
	case application.CodeNotFound:
		return http.StatusNotFound
	case application.CodeBadRequest, application.CodeConflict:
		return http.StatusBadRequest
	}
	if errors.Is(err, application.ErrSearchUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps a service error onto the envelope. Unexpected failures keep
// their original message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError && logger != nil {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}
	response.Error[any](c, status, err.Error(), nil)
}
