package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/middleware"
)

const requestTimeout = 5 * time.Second

// Auth holds the middlewares handlers attach to their routes.
type Auth struct {
	Required gin.HandlerFunc
	Optional gin.HandlerFunc
	Admin    gin.HandlerFunc
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.Validation(param, "invalid id"))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body into dst, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.ErrValidation.WithMessage("invalid request body: %v", err))
		return false
	}
	return true
}

// queryInt returns def when the parameter is missing or not a positive
// integer.
func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// queryFlag accepts "1" and "true".
func queryFlag(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
