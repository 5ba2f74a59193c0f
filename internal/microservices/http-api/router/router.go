// Package router assembles the gin engine for the HTTP API.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"foodgram/internal/apperr"
	"foodgram/internal/logger"
	"foodgram/internal/microservices/http-api/handler"
	"foodgram/internal/microservices/http-api/middleware"
)

// Deps carries everything the routes are built from.
type Deps struct {
	Recipes   *handler.RecipeHandler
	Relations *handler.RelationHandler
	Users     *handler.UserHandler
	Catalog   *handler.CatalogHandler
	Links     *handler.ShortLinkHandler

	Auth handler.Auth
	// LinkLimit throttles short-link creation and redirects.
	LinkLimit gin.HandlerFunc

	CORSOrigins []string
	// MediaRoot is served under /media when images live on local disk.
	MediaRoot string
	// Health checks backing services for /healthz.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

func New(d Deps) *gin.Engine {
	if d.LinkLimit == nil {
		d.LinkLimit = func(c *gin.Context) { c.Next() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.AccessLog(d.Logger))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/healthz", health(d.Health))
	if d.MediaRoot != "" {
		r.Static("/media", d.MediaRoot)
	}

	api := r.Group("/api")

	d.Users.RegisterRoutes(api.Group("/users"), d.Auth)
	d.Catalog.RegisterTagRoutes(api.Group("/tags"), d.Auth)
	d.Catalog.RegisterIngredientRoutes(api.Group("/ingredients"), d.Auth)

	recipes := api.Group("/recipes")
	d.Recipes.RegisterRoutes(recipes, d.Auth)
	d.Relations.RegisterRoutes(recipes, d.Auth)
	d.Links.RegisterRecipeRoutes(recipes, d.LinkLimit)

	d.Links.RegisterRedirectRoutes(r.Group("/s"), d.LinkLimit)

	r.NoRoute(func(c *gin.Context) {
		middleware.RespondError(c, apperr.ErrNotFound.WithMessage("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})

	return r
}

func health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
