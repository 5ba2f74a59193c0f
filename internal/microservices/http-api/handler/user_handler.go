package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/middleware"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/service"
)

type UserAccounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Get(ctx context.Context, viewer service.Viewer, id string) (*service.UserView, error)
	SetAvatar(ctx context.Context, userID, image string) (string, error)
	DeleteAvatar(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, in service.PasswordChange) error
}

type Subscriptions interface {
	Subscribe(ctx context.Context, followerID, authorID string, recipesLimit int) (*service.AuthorRecipes, error)
	Unsubscribe(ctx context.Context, followerID, authorID string) error
	List(ctx context.Context, followerID string, recipesLimit, limit, offset int) (*service.SubscriptionPage, error)
}

type UserHandler struct {
	users    UserAccounts
	subs     Subscriptions
	pageSize int
}

func NewUserHandler(users UserAccounts, subs Subscriptions, pageSize int) *UserHandler {
	return &UserHandler{users: users, subs: subs, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, auth Auth) {
	rg.POST("", h.Register)
	rg.GET("/me", auth.Required, h.Me)
	rg.PUT("/me/avatar", auth.Required, h.SetAvatar)
	rg.DELETE("/me/avatar", auth.Required, h.DeleteAvatar)
	rg.POST("/set_password", auth.Required, h.SetPassword)
	rg.GET("/subscriptions", auth.Required, h.Subscriptions)
	rg.GET("/:id", auth.Optional, h.Get)
	rg.POST("/:id/subscribe", auth.Required, h.Subscribe)
	rg.DELETE("/:id/subscribe", auth.Required, h.Unsubscribe)
}

func (h *UserHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Register(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRegisteredUserResponse(user))
}

func (h *UserHandler) Me(c *gin.Context) {
	h.respondUser(c, middleware.ViewerFrom(c).UserID)
}

func (h *UserHandler) Get(c *gin.Context) {
	h.respondUser(c, c.Param("id"))
}

func (h *UserHandler) respondUser(c *gin.Context, id string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.users.Get(ctx, middleware.ViewerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(view.User, view.IsSubscribed))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var in dto.AvatarRequest
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ref, err := h.users.SetAvatar(ctx, middleware.ViewerFrom(c).UserID, in.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvatarResponse{Avatar: ref})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.DeleteAvatar(ctx, middleware.ViewerFrom(c).UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var in service.PasswordChange
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.ChangePassword(ctx, middleware.ViewerFrom(c).UserID, in); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	limit := queryInt(c, "limit", h.pageSize)
	page := queryInt(c, "page", 1)
	recipesLimit := queryInt(c, "recipes_limit", 0)

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.subs.List(ctx, middleware.ViewerFrom(c).UserID, recipesLimit, limit, offset(page, limit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSubscriptionPage(result))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	author, err := h.subs.Subscribe(ctx, middleware.ViewerFrom(c).UserID, c.Param("id"), queryInt(c, "recipes_limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSubscriptionResponse(*author))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.subs.Unsubscribe(ctx, middleware.ViewerFrom(c).UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
