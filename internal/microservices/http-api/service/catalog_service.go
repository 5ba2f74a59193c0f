package service

import (
	"context"
	"log/slog"
	"strings"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/validation"
)

type TagInput struct {
	Name string `json:"name" validate:"required,max=32"`
	Slug string `json:"slug" validate:"required,max=32,slug"`
}

type IngredientInput struct {
	Name            string `json:"name" validate:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=64"`
}

// CatalogService serves the admin-curated reference data: tags and
// ingredients.
type CatalogService struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	validator   *validation.Validator
	logger      *slog.Logger
}

func NewCatalogService(tags repository.TagRepository, ingredients repository.IngredientRepository, v *validation.Validator, logger *slog.Logger) *CatalogService {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{tags: tags, ingredients: ingredients, validator: v, logger: logger}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	return s.tags.GetByID(ctx, id)
}

func (s *CatalogService) CreateTag(ctx context.Context, viewer Viewer, in TagInput) (*models.Tag, error) {
	if !viewer.IsAdmin {
		return nil, apperr.Forbidden("admin role required")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: in.Name, Slug: in.Slug}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	s.logger.Info("tag_created", slog.Int64("tag_id", tag.ID), slog.String("slug", tag.Slug))
	return tag, nil
}

// ListIngredients filters by a case-insensitive name prefix when name is
// non-empty.
func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	return s.ingredients.List(ctx, strings.TrimSpace(name))
}

func (s *CatalogService) GetIngredient(ctx context.Context, id int64) (*models.Ingredient, error) {
	return s.ingredients.GetByID(ctx, id)
}

func (s *CatalogService) CreateIngredient(ctx context.Context, viewer Viewer, in IngredientInput) (*models.Ingredient, error) {
	if !viewer.IsAdmin {
		return nil, apperr.Forbidden("admin role required")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.MeasurementUnit = strings.TrimSpace(in.MeasurementUnit)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	ing := &models.Ingredient{Name: in.Name, MeasurementUnit: in.MeasurementUnit}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}
	s.logger.Info("ingredient_created", slog.Int64("ingredient_id", ing.ID), slog.String("name", ing.Name))
	return ing, nil
}
