package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodgram/database"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/logger"
	"foodgram/internal/microservices/http-api/handler"
	"foodgram/internal/microservices/http-api/middleware"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/microservices/http-api/router"
	"foodgram/internal/microservices/http-api/service"
	"foodgram/internal/storage"
	"foodgram/internal/validation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	lg := logger.New(cfg)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, lg); err != nil {
		lg.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *slog.Logger) error {
	db, err := database.Connect(cfg, lg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, lg); err != nil {
		return err
	}

	links, err := cache.NewLinkCache(cfg.RedisURL, cfg.RedisPassword, cfg.LinkCacheTTL)
	if err != nil {
		return err
	}
	defer links.Close()
	if !links.Enabled() {
		lg.Warn("link_cache_disabled")
	}

	store, mediaRoot, err := imageStore(cfg)
	if err != nil {
		return err
	}
	images := storage.NewUploader(store, cfg.MaxImageBytes)
	v := validation.New()

	// repositories
	users := repository.NewUserRepository(db)
	recipes := repository.NewRecipeRepository(db)
	tags := repository.NewTagRepository(db)
	ingredients := repository.NewIngredientRepository(db)
	favorites := repository.NewRelationRepository[int64](db, models.FavoriteRelation)
	cart := repository.NewRelationRepository[int64](db, models.ShoppingCartRelation)
	subscriptions := repository.NewRelationRepository[string](db, models.SubscriptionRelation)
	shortLinks := repository.NewShortLinkRepository(db)

	// services
	recipeSvc := service.NewRecipeService(service.RecipeServiceDeps{
		Recipes:       recipes,
		Tags:          tags,
		Ingredients:   ingredients,
		Favorites:     favorites,
		Cart:          cart,
		Subscriptions: subscriptions,
		Images:        images,
		Validator:     v,
		Limits:        cfg.Limits(),
		PageSize:      cfg.PageSize,
		MaxPageSize:   cfg.MaxPageSize,
		Logger:        lg,
	})
	userSvc := service.NewUserService(users, subscriptions, images, v, lg)
	subSvc := service.NewSubscriptionService(subscriptions, users, recipes, lg)
	linkSvc := service.NewShortLinkService(shortLinks, links, service.NewTokenGenerator(cfg.ShortLinkLength), cfg.ShortLinkMaxAttempts, lg)

	verifier := service.NewTokenVerifier(cfg.JWTSecret)
	auth := handler.Auth{
		Required: middleware.RequireAuth(verifier, users),
		Optional: middleware.OptionalAuth(verifier, users),
		Admin:    middleware.RequireAdmin(),
	}

	limiter := middleware.NewIPRateLimiter(cfg.ShortLinkRate, cfg.ShortLinkBurst, 10*time.Minute)
	defer limiter.Stop()

	engine := router.New(router.Deps{
		Recipes: handler.NewRecipeHandler(recipeSvc, cfg.PageSize),
		Relations: handler.NewRelationHandler(
			service.NewFavoriteService(favorites, recipes, lg),
			service.NewShoppingCartService(cart, recipes, lg),
			service.NewShoppingListService(recipes, lg),
		),
		Users:       handler.NewUserHandler(userSvc, subSvc, cfg.PageSize),
		Catalog:     handler.NewCatalogHandler(service.NewCatalogService(tags, ingredients, v, lg)),
		Links:       handler.NewShortLinkHandler(linkSvc, recipeSvc, cfg.PublicBaseURL),
		Auth:        auth,
		LinkLimit:   limiter.Handler(),
		CORSOrigins: cfg.CORSOrigins,
		MediaRoot:   mediaRoot,
		Health:      pinger(db),
		Logger:      lg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http_server_started", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		lg.Info("shutdown_started", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lg.Info("shutdown_complete")
	return nil
}

// imageStore picks S3 when a bucket is configured and local disk otherwise.
// The second result is the directory to serve under /media, if any.
func imageStore(cfg *config.Config) (storage.ImageStore, string, error) {
	if cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}
	return storage.NewDiskStore(cfg.MediaRoot, "/media"), cfg.MediaRoot, nil
}

func pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
