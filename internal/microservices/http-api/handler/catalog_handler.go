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

type Catalog interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id int64) (*models.Tag, error)
	CreateTag(ctx context.Context, viewer service.Viewer, in service.TagInput) (*models.Tag, error)
	ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, viewer service.Viewer, in service.IngredientInput) (*models.Ingredient, error)
}

type CatalogHandler struct {
	svc Catalog
}

func NewCatalogHandler(svc Catalog) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// RegisterTagRoutes mounts under /api/tags.
func (h *CatalogHandler) RegisterTagRoutes(rg *gin.RouterGroup, auth Auth) {
	rg.GET("", h.ListTags)
	rg.GET("/:id", h.GetTag)
	rg.POST("", auth.Required, auth.Admin, h.CreateTag)
}

// RegisterIngredientRoutes mounts under /api/ingredients.
func (h *CatalogHandler) RegisterIngredientRoutes(rg *gin.RouterGroup, auth Auth) {
	rg.GET("", h.ListIngredients)
	rg.GET("/:id", h.GetIngredient)
	rg.POST("", auth.Required, auth.Admin, h.CreateIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	tags, err := h.svc.ListTags(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTagList(tags))
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tag, err := h.svc.GetTag(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTagResponse(*tag))
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var in service.TagInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tag, err := h.svc.CreateTag(ctx, middleware.ViewerFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTagResponse(*tag))
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.svc.ListIngredients(ctx, c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewIngredientList(list))
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ing, err := h.svc.GetIngredient(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewIngredientResponse(*ing))
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var in service.IngredientInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ing, err := h.svc.CreateIngredient(ctx, middleware.ViewerFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewIngredientResponse(*ing))
}
