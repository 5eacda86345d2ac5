package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bloglist-api/internal/app"
	"bloglist-api/internal/transport/http/response"
)

// ErrorHandler turns the last error attached with c.Error into a response.
// Handlers attach the error and return without writing anything.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		kind := app.KindOf(err)

		logger := log.Debug()
		if kind == app.KindInternal {
			logger = log.Error()
		}
		logger.Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("kind", kind.String()).
			Msg("request failed")

		if c.Writer.Written() {
			return
		}

		switch kind {
		case app.KindValidation, app.KindMalformedID:
			response.Error(c, http.StatusBadRequest, err.Error())
		case app.KindUnauthorized:
			response.Error(c, http.StatusUnauthorized, err.Error())
		case app.KindNotFound:
			c.Status(http.StatusNotFound)
		default:
			response.Error(c, http.StatusInternalServerError, "internal server error")
		}
	}
}
