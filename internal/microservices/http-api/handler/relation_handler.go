package handler

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/middleware"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/render"
)

// RecipeRelations is a per-user recipe set: favorites or the cart.
type RecipeRelations interface {
	Add(ctx context.Context, userID string, recipeID int64) (*models.Recipe, error)
	Remove(ctx context.Context, userID string, recipeID int64) error
}

type ShoppingLister interface {
	Aggregate(ctx context.Context, userID string) ([]models.ShoppingItem, error)
}

type RelationHandler struct {
	favorites RecipeRelations
	cart      RecipeRelations
	shopping  ShoppingLister
}

func NewRelationHandler(favorites, cart RecipeRelations, shopping ShoppingLister) *RelationHandler {
	return &RelationHandler{favorites: favorites, cart: cart, shopping: shopping}
}

// RegisterRoutes mounts under /api/recipes.
func (h *RelationHandler) RegisterRoutes(rg *gin.RouterGroup, auth Auth) {
	rg.GET("/download_shopping_cart", auth.Required, h.DownloadShoppingCart)

	rg.POST("/:id/favorite", auth.Required, h.add(h.favorites))
	rg.DELETE("/:id/favorite", auth.Required, h.remove(h.favorites))
	rg.POST("/:id/shopping_cart", auth.Required, h.add(h.cart))
	rg.DELETE("/:id/shopping_cart", auth.Required, h.remove(h.cart))
}

func (h *RelationHandler) add(set RecipeRelations) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		recipe, err := set.Add(ctx, middleware.ViewerFrom(c).UserID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewRecipeShort(recipe))
	}
}

func (h *RelationHandler) remove(set RecipeRelations) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := set.Remove(ctx, middleware.ViewerFrom(c).UserID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated list as a file; format is txt
// (default) or pdf.
func (h *RelationHandler) DownloadShoppingCart(c *gin.Context) {
	renderer, err := render.ForFormat(c.DefaultQuery("format", "txt"))
	if err != nil {
		respondError(c, apperr.Validation("format", err.Error()))
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.shopping.Aggregate(ctx, middleware.ViewerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, items); err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list`+renderer.Extension()+`"`)
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}
