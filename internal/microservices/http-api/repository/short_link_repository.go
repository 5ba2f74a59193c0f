package repository

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ShortLinkRepository stores token→URL mappings.
type ShortLinkRepository interface {
	// Create inserts link. A token clash comes back unwrapped so callers can
	// detect it with IsUniqueViolation and retry with a fresh token.
	Create(ctx context.Context, link *models.ShortLink) error
	// FindByURL returns the oldest mapping for url, or nil when none exists.
	FindByURL(ctx context.Context, url string) (*models.ShortLink, error)
	// FindByToken fails with apperr.ErrLinkNotFound for unknown tokens.
	FindByToken(ctx context.Context, token string) (*models.ShortLink, error)
}

// shortLinkRepository is the GORM implementation of ShortLinkRepository
type shortLinkRepository struct {
	db *gorm.DB
}

func NewShortLinkRepository(db *gorm.DB) ShortLinkRepository {
	return &shortLinkRepository{db: db}
}

func (r *shortLinkRepository) Create(ctx context.Context, link *models.ShortLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("create short link: %w", err)
	}
	return nil
}

func (r *shortLinkRepository) FindByURL(ctx context.Context, url string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := r.db.WithContext(ctx).
		Where("original_url = ?", url).
		Order("id ASC").
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find short link by url: %w", err)
	}
	return &link, nil
}

func (r *shortLinkRepository) FindByToken(ctx context.Context, token string) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		return nil, translate(err, violations{notFound: apperr.ErrLinkNotFound})
	}
	return &link, nil
}
