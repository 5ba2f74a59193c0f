package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"foodgram/internal/microservices/http-api/dto"
	"foodgram/internal/microservices/http-api/models"
)

type LinkService interface {
	Shorten(ctx context.Context, originalURL string) (*models.ShortLink, error)
	Resolve(ctx context.Context, token string) (string, error)
}

// RecipeChecker confirms a recipe exists before a link to it is minted.
type RecipeChecker interface {
	Exists(ctx context.Context, id int64) error
}

type ShortLinkHandler struct {
	links   LinkService
	recipes RecipeChecker
	baseURL string
	host    string
}

// NewShortLinkHandler builds the handler. baseURL is the public origin,
// without a trailing slash, used both for short links and canonical
// recipe URLs. Only Referers on baseURL's host are shortened.
func NewShortLinkHandler(links LinkService, recipes RecipeChecker, baseURL string) *ShortLinkHandler {
	h := &ShortLinkHandler{links: links, recipes: recipes, baseURL: baseURL}
	if u, err := url.Parse(baseURL); err == nil {
		h.host = u.Host
	}
	return h
}

// RegisterRecipeRoutes mounts get-link under /api/recipes.
func (h *ShortLinkHandler) RegisterRecipeRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.GET("/:id/get-link", limit, h.GetLink)
}

// RegisterRedirectRoutes mounts the public redirect, e.g. /s/:token.
func (h *ShortLinkHandler) RegisterRedirectRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.GET("/:token", limit, h.Redirect)
}

// GetLink shortens the page the client came from, or the recipe's
// canonical URL when the Referer is missing or points at another site.
func (h *ShortLinkHandler) GetLink(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.recipes.Exists(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	target := c.GetHeader("Referer")
	if !h.ownPage(target) {
		target = fmt.Sprintf("%s/recipes/%d", h.baseURL, id)
	}

	link, err := h.links.Shorten(ctx, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ShortLinkResponse{ShortLink: h.baseURL + "/s/" + link.Token})
}

func (h *ShortLinkHandler) ownPage(referer string) bool {
	if referer == "" || h.host == "" {
		return false
	}
	u, err := url.Parse(referer)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, h.host)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	target, err := h.links.Resolve(ctx, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}
