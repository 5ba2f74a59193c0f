package repository

import (
	"context"
	"fmt"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows List. Empty fields do not filter.
type RecipeFilter struct {
	NamePrefix  string
	TagSlugs    []string // any of
	AuthorID    string
	FavoritedBy string // user id
	InCartOf    string // user id
	Limit       int
	Offset      int
}

type RecipeRepository interface {
	// Create and Replace write the recipe row, its tag links and its
	// ingredient rows in one transaction.
	Create(ctx context.Context, recipe *models.Recipe, tagIDs []int64, ingredients []models.RecipeIngredient) error
	Replace(ctx context.Context, recipe *models.Recipe, tagIDs []int64, ingredients []models.RecipeIngredient) error
	Delete(ctx context.Context, id int64) error
	// GetByID loads the recipe with author, tags and ingredients.
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	// GetBasic loads only the recipe row.
	GetBasic(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error)
	// ShoppingLines returns one row per ingredient of every recipe in the
	// user's cart, unaggregated.
	ShoppingLines(ctx context.Context, userID string) ([]models.ShoppingLine, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

var (
	recipeViolations = violations{
		foreignKey: apperr.ErrUserNotFound.WithField("author"),
		check:      apperr.ErrCookingTimeOutOfRange,
		notFound:   apperr.ErrRecipeNotFound,
	}
	recipeTagViolations = violations{
		duplicate:  apperr.ErrDuplicateTag,
		foreignKey: apperr.ErrUnknownTag,
	}
	recipeIngredientViolations = violations{
		duplicate:  apperr.ErrDuplicateIngredient,
		foreignKey: apperr.ErrUnknownIngredient,
		check:      apperr.ErrAmountOutOfRange,
	}
)

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagIDs []int64, ingredients []models.RecipeIngredient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translate(err, recipeViolations)
		}
		return writeComposition(tx, recipe.ID, tagIDs, ingredients)
	})
	if err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}
	return nil
}

func (r *recipeRepository) Replace(ctx context.Context, recipe *models.Recipe, tagIDs []int64, ingredients []models.RecipeIngredient) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]any{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
				"image":        recipe.Image,
			})
		if result.Error != nil {
			return translate(result.Error, recipeViolations)
		}
		if result.RowsAffected == 0 {
			return apperr.ErrRecipeNotFound
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		return writeComposition(tx, recipe.ID, tagIDs, ingredients)
	})
	if err != nil {
		return fmt.Errorf("replace recipe %d: %w", recipe.ID, err)
	}
	return nil
}

// writeComposition inserts the tag links and ingredient rows of recipeID.
func writeComposition(tx *gorm.DB, recipeID int64, tagIDs []int64, ingredients []models.RecipeIngredient) error {
	if len(tagIDs) > 0 {
		links := make([]models.RecipeTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: id})
		}
		if err := tx.Create(&links).Error; err != nil {
			return translate(err, recipeTagViolations)
		}
	}

	if len(ingredients) > 0 {
		rows := make([]models.RecipeIngredient, 0, len(ingredients))
		for _, ing := range ingredients {
			rows = append(rows, models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: ing.IngredientID,
				Amount:       ing.Amount,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return translate(err, recipeIngredientViolations)
		}
	}
	return nil
}

// Delete removes the recipe; tag links, ingredient rows, favorites and cart
// entries go with it through ON DELETE CASCADE.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Recipe{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrRecipeNotFound
	}
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var m models.Recipe
	if err := withDetails(r.db.WithContext(ctx)).First(&m, id).Error; err != nil {
		return nil, translate(err, recipeViolations)
	}
	return &m, nil
}

func (r *recipeRepository) GetBasic(ctx context.Context, id int64) (*models.Recipe, error) {
	var m models.Recipe
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, recipeViolations)
	}
	return &m, nil
}

func (r *recipeRepository) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})

	if f.NamePrefix != "" {
		q = q.Where("recipes.name LIKE ?", escapeLike(f.NamePrefix)+"%")
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where(`EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = recipes.id AND t.slug IN ?)`, f.TagSlugs)
	}
	if f.AuthorID != "" {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != "" {
		q = q.Where("EXISTS (SELECT 1 FROM favorites fv WHERE fv.recipe_id = recipes.id AND fv.user_id = ?)", f.FavoritedBy)
	}
	if f.InCartOf != "" {
		q = q.Where("EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = recipes.id AND sc.user_id = ?)", f.InCartOf)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var list []models.Recipe
	page := withDetails(q).Order("recipes.created_at DESC").Order("recipes.id DESC")
	if f.Limit > 0 {
		page = page.Limit(f.Limit).Offset(f.Offset)
	}
	if err := page.Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return list, total, nil
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error) {
	list := []models.Recipe{}
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list recipes by author: %w", err)
	}
	return list, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID string
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count recipes by author: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) ShoppingLines(ctx context.Context, userID string) ([]models.ShoppingLine, error) {
	lines := []models.ShoppingLine{}
	if err := r.db.WithContext(ctx).
		Table("shopping_cart AS sc").
		Select("i.name AS name, i.measurement_unit AS unit, ri.amount AS amount").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("sc.user_id = ?", userID).
		Scan(&lines).Error; err != nil {
		return nil, fmt.Errorf("shopping lines: %w", err)
	}
	return lines, nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id ASC") }).
		Preload("Ingredients.Ingredient")
}
