package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"foodgram/internal/apperr"
)

// RespondError writes err as {"error", "reason", "field", "details"} with
// the status its kind maps to. Internal causes are logged, never sent.
func RespondError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		slog.Error("request_failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	c.JSON(e.HTTPStatus(), e)
}
