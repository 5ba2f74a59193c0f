package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// TokenGenerator returns a fresh candidate token.
type TokenGenerator func() (string, error)

// NewTokenGenerator draws length characters uniformly from A-Z, a-z, 0-9.
func NewTokenGenerator(length int) TokenGenerator {
	return func() (string, error) {
		return gonanoid.Generate(tokenAlphabet, length)
	}
}

// LinkCache is the read-through cache in front of the store.
// *cache.LinkCache satisfies it.
type LinkCache interface {
	Get(ctx context.Context, token string) (string, bool, error)
	Set(ctx context.Context, token, url string) error
}

type ShortLinkService struct {
	repo        repository.ShortLinkRepository
	cache       LinkCache
	generate    TokenGenerator
	maxAttempts int
	logger      *slog.Logger
}

func NewShortLinkService(repo repository.ShortLinkRepository, cache LinkCache, generate TokenGenerator, maxAttempts int, logger *slog.Logger) *ShortLinkService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ShortLinkService{
		repo:        repo,
		cache:       cache,
		generate:    generate,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Shorten returns the mapping for originalURL, creating it on first use.
// The same URL string always yields the same token.
func (s *ShortLinkService) Shorten(ctx context.Context, originalURL string) (*models.ShortLink, error) {
	if err := checkURL(originalURL); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		token, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}

		link := &models.ShortLink{Token: token, OriginalURL: originalURL}
		err = s.repo.Create(ctx, link)
		if err == nil {
			s.logger.Info("short_link_created", slog.String("token", token), slog.Int("attempt", attempt))
			link = s.oldest(ctx, link)
			s.remember(ctx, link.Token, originalURL)
			return link, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		s.logger.Warn("short_link_collision", slog.String("token", token), slog.Int("attempt", attempt))
	}

	return nil, apperr.ErrTokenSpaceExhausted.WithMessage("no free token after %d attempts", s.maxAttempts)
}

// oldest re-reads the mapping for created's URL. A concurrent Shorten of the
// same URL may have inserted its own row; every caller settles on the first.
func (s *ShortLinkService) oldest(ctx context.Context, created *models.ShortLink) *models.ShortLink {
	first, err := s.repo.FindByURL(ctx, created.OriginalURL)
	if err != nil {
		s.logger.Warn("short_link_reread_failed", slog.String("token", created.Token), slog.Any("error", err))
		return created
	}
	if first == nil {
		return created
	}
	return first
}

// Resolve returns the URL stored for token.
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (string, error) {
	if s.cache != nil {
		target, ok, err := s.cache.Get(ctx, token)
		if err != nil {
			s.logger.Warn("short_link_cache_read_failed", slog.String("token", token), slog.Any("error", err))
		} else if ok {
			return target, nil
		}
	}

	link, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return "", err
	}
	s.remember(ctx, token, link.OriginalURL)
	return link.OriginalURL, nil
}

func (s *ShortLinkService) remember(ctx context.Context, token, target string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, token, target); err != nil {
		s.logger.Warn("short_link_cache_write_failed", slog.String("token", token), slog.Any("error", err))
	}
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return apperr.ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperr.ErrInvalidURL.WithMessage("only http and https links can be shortened")
	}
	return nil
}
