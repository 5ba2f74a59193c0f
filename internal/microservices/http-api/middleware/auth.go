package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/service"
)

// Context keys set by the auth middlewares.
const (
	KeyUserID  = "userID"
	KeyUser    = "user"
	KeyIsAdmin = "isAdmin"
)

// UserLookup loads the account a token refers to.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(verifier service.TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, verifier, users)
		if err != nil {
			RespondError(c, err)
			c.Abort()
			return
		}
		if user == nil {
			RespondError(c, apperr.Unauthorized("missing authorization header"))
			c.Abort()
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth lets anonymous requests through. A present but invalid
// token is still rejected.
func OptionalAuth(verifier service.TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, verifier, users)
		if err != nil {
			RespondError(c, err)
			c.Abort()
			return
		}
		if user != nil {
			setUser(c, user)
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(KeyIsAdmin) {
			RespondError(c, apperr.Forbidden("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ViewerFrom returns the caller set by the auth middlewares, or the
// anonymous viewer.
func ViewerFrom(c *gin.Context) service.Viewer {
	userID := c.GetString(KeyUserID)
	if userID == "" {
		return service.Anonymous
	}
	return service.Viewer{UserID: userID, IsAdmin: c.GetBool(KeyIsAdmin)}
}

// authenticate returns nil, nil when no Authorization header is present.
func authenticate(c *gin.Context, verifier service.TokenVerifier, users UserLookup) (*models.User, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}

	// Extract token (format: "Bearer <token>")
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperr.Unauthorized("invalid authorization header format")
	}

	claims, err := verifier.ValidateToken(parts[1])
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.As(err).Kind == apperr.KindNotFound {
			return nil, apperr.Unauthorized("account no longer exists")
		}
		slog.Error("auth_user_lookup_failed", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(KeyUserID, user.ID)
	c.Set(KeyUser, user)
	c.Set(KeyIsAdmin, user.IsAdmin())
}
