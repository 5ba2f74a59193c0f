package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/middleware"
	"foodgram/internal/microservices/http-api/service"
)

type RecipeHandler struct {
	svc      service.RecipeService
	pageSize int
}

func NewRecipeHandler(svc service.RecipeService, pageSize int) *RecipeHandler {
	return &RecipeHandler{svc: svc, pageSize: pageSize}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup, auth Auth) {
	// Public reads; a token, when sent, fills the viewer flags.
	rg.GET("", auth.Optional, h.List)
	rg.GET("/:id", auth.Optional, h.Get)

	rg.POST("", auth.Required, h.Create)
	rg.PATCH("/:id", auth.Required, h.Replace)
	rg.DELETE("/:id", auth.Required, h.Delete)
}

func (h *RecipeHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	q := service.RecipeQuery{
		Name:             c.Query("name"),
		Tags:             c.QueryArray("tags"),
		AuthorID:         c.Query("author"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
		Page:             queryInt(c, "page", 1),
		Limit:            queryInt(c, "limit", h.pageSize),
	}

	page, err := h.svc.List(ctx, middleware.ViewerFrom(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipePage(page))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.svc.Get(ctx, middleware.ViewerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeResponse(*view))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var in service.RecipeInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.svc.Create(ctx, middleware.ViewerFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRecipeResponse(*view))
}

// Replace is a full update: every field of the recipe is rewritten.
func (h *RecipeHandler) Replace(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in service.RecipeInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.svc.Replace(ctx, middleware.ViewerFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeResponse(*view))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.ViewerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
