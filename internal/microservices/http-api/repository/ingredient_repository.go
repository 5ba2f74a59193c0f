package repository

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type IngredientRepository interface {
	// List filters by a case-insensitive name prefix when prefix is non-empty.
	List(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*models.Ingredient, error)
	Create(ctx context.Context, ingredient *models.Ingredient) error
	CountByIDs(ctx context.Context, ids []int64) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var ingredientViolations = violations{
	duplicate: apperr.ErrConflict.WithField("name").WithMessage("ingredient with this unit already exists"),
	notFound:  apperr.ErrIngredientNotFound,
}

func (r *ingredientRepository) List(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	var list []models.Ingredient
	q := r.db.WithContext(ctx).Order("name ASC").Order("measurement_unit ASC")
	if prefix != "" {
		q = q.Where("name ILIKE ?", escapeLike(prefix)+"%")
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return list, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, translate(err, ingredientViolations)
	}
	return &ing, nil
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return fmt.Errorf("create ingredient: %w", translate(err, ingredientViolations))
	}
	return nil
}

func (r *ingredientRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id IN ?", ids).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count ingredients: %w", err)
	}
	return count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
