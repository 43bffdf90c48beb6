package handlers

import (
	"errors"
	"net/http"

	"github.com/faizan/spotify-tracks/apperr"
	"github.com/gin-gonic/gin"
)

// respondError maps err onto a status and a short message. Server errors are
// logged with the request id and reach the client without detail.
func (h *Handler) respondError(c *gin.Context, err error, notFoundMsg string) {
	var (
		status int
		msg    string
	)

	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, msg = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, apperr.ErrAuth):
		status, msg = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, apperr.ErrConflict):
		status, msg = http.StatusBadRequest, "Track already exists"
	case errors.Is(err, apperr.ErrNotFound):
		status, msg = http.StatusNotFound, notFoundMsg
	case errors.Is(err, apperr.ErrUpstream):
		status, msg = http.StatusBadGateway, "Catalog unavailable"
	default:
		status, msg = http.StatusInternalServerError, "Server error"
	}

	if status >= http.StatusInternalServerError {
		h.log.WithField("request_id", c.GetString(requestIDKey)).
			WithError(err).
			Error("request failed")
	}

	c.JSON(status, gin.H{"error": msg})
}
