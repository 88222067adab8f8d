package middleware

// error_handler.go maps the typed domain errors attached via c.Error() to
// HTTP status codes. Handlers never write error responses themselves; they
// attach and abort, and this middleware decides the wire shape.

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"brewpos/internal/apierror"
)

// ErrorHandler runs after the handler chain and serializes the first
// attached error. 5xx details are logged, never echoed to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var (
			authErr     *apierror.AuthError
			orgErr      *apierror.OrgResolutionError
			validErr    *apierror.ValidationError
			notFoundErr *apierror.NotFoundError
			stockErr    *apierror.InsufficientStockError
			persistErr  *apierror.PersistenceError
		)

		switch {
		case errors.As(err, &authErr):
			c.JSON(http.StatusUnauthorized, apierror.New(authErr.Error()))
		case errors.As(err, &orgErr):
			c.JSON(http.StatusForbidden, apierror.New(orgErr.Error()))
		case errors.As(err, &validErr):
			c.JSON(http.StatusBadRequest, apierror.New(validErr.Error()))
		case errors.As(err, &notFoundErr):
			c.JSON(http.StatusNotFound, apierror.New(notFoundErr.Error()))
		case errors.As(err, &stockErr):
			// 409: the request was valid, the current stock state refuses it
			c.JSON(http.StatusConflict, gin.H{
				"detail":     "insufficient stock",
				"shortfalls": stockErr.Shortfalls,
			})
		case errors.As(err, &persistErr):
			log.Error().Err(persistErr).Str("request_id", GetRequestID(c)).
				Msg("persistence failure reached handler")
			c.JSON(http.StatusServiceUnavailable, apierror.New("storage temporarily unavailable"))
		default:
			log.Error().Err(err).Str("request_id", GetRequestID(c)).
				Str("path", c.Request.URL.Path).Msg("unhandled error")
			c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		}
	}
}
