package service

import (
	"context"
	"fmt"
	"log/slog"

	"foodgram/internal/apperr"
	"foodgram/internal/config"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/validation"
)

const recipeImagePrefix = "recipes/images"

// ImageUploader turns an inline image payload into a stored reference.
// A non-inline value is only accepted when it equals current.
// *storage.Uploader satisfies it.
type ImageUploader interface {
	Save(ctx context.Context, prefix, value, current string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// RecipeView is a recipe plus the viewer-dependent flags.
type RecipeView struct {
	Recipe           *models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeQuery is the list filter as received from the client.
type RecipeQuery struct {
	Name             string
	Tags             []string
	AuthorID         string
	IsFavorited      bool
	IsInShoppingCart bool
	Page             int
	Limit            int
}

type RecipePage struct {
	Count   int64
	Results []RecipeView
}

type RecipeService interface {
	Create(ctx context.Context, viewer Viewer, in RecipeInput) (*RecipeView, error)
	Replace(ctx context.Context, viewer Viewer, id int64, in RecipeInput) (*RecipeView, error)
	Delete(ctx context.Context, viewer Viewer, id int64) error
	Get(ctx context.Context, viewer Viewer, id int64) (*RecipeView, error)
	List(ctx context.Context, viewer Viewer, q RecipeQuery) (*RecipePage, error)
	// Exists is used by relation toggles to check their target.
	Exists(ctx context.Context, id int64) error
}

type recipeService struct {
	recipes       repository.RecipeRepository
	tags          repository.TagRepository
	ingredients   repository.IngredientRepository
	favorites     repository.RelationRepository[int64]
	cart          repository.RelationRepository[int64]
	subscriptions repository.RelationRepository[string]
	images        ImageUploader
	validator     *validation.Validator
	limits        config.Limits
	pageSize      int
	maxPageSize   int
	logger        *slog.Logger
}

type RecipeServiceDeps struct {
	Recipes       repository.RecipeRepository
	Tags          repository.TagRepository
	Ingredients   repository.IngredientRepository
	Favorites     repository.RelationRepository[int64]
	Cart          repository.RelationRepository[int64]
	Subscriptions repository.RelationRepository[string]
	Images        ImageUploader
	Validator     *validation.Validator
	Limits        config.Limits
	PageSize      int
	MaxPageSize   int
	Logger        *slog.Logger
}

func NewRecipeService(d RecipeServiceDeps) RecipeService {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.PageSize <= 0 {
		d.PageSize = 6
	}
	if d.MaxPageSize < d.PageSize {
		d.MaxPageSize = d.PageSize
	}
	return &recipeService{
		recipes:       d.Recipes,
		tags:          d.Tags,
		ingredients:   d.Ingredients,
		favorites:     d.Favorites,
		cart:          d.Cart,
		subscriptions: d.Subscriptions,
		images:        d.Images,
		validator:     d.Validator,
		limits:        d.Limits,
		pageSize:      d.PageSize,
		maxPageSize:   d.MaxPageSize,
		logger:        d.Logger,
	}
}

func (s *recipeService) Create(ctx context.Context, viewer Viewer, in RecipeInput) (*RecipeView, error) {
	if viewer.IsAnonymous() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if err := s.check(ctx, in, false); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, recipeImagePrefix, in.Image, "")
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    viewer.UserID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       image,
	}
	if err := s.recipes.Create(ctx, recipe, in.TagIDs, composition(in.Ingredients)); err != nil {
		s.discardImage(ctx, image, in.Image)
		return nil, err
	}

	s.logger.Info("recipe_created",
		slog.Int64("recipe_id", recipe.ID),
		slog.String("author_id", viewer.UserID),
		slog.Int("ingredients", len(in.Ingredients)),
	)
	return s.Get(ctx, viewer, recipe.ID)
}

func (s *recipeService) Replace(ctx context.Context, viewer Viewer, id int64, in RecipeInput) (*RecipeView, error) {
	if viewer.IsAnonymous() {
		return nil, apperr.Unauthorized("authentication required")
	}
	current, err := s.recipes.GetBasic(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutateRecipe(viewer, current) {
		return nil, apperr.Forbidden("only the author can change this recipe")
	}
	if err := s.check(ctx, in, true); err != nil {
		return nil, err
	}

	image, err := s.images.Save(ctx, recipeImagePrefix, in.Image, current.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:          id,
		AuthorID:    current.AuthorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       image,
	}
	if err := s.recipes.Replace(ctx, recipe, in.TagIDs, composition(in.Ingredients)); err != nil {
		s.discardImage(ctx, image, in.Image)
		return nil, err
	}
	if current.Image != image {
		s.discardImage(ctx, current.Image, "")
	}

	s.logger.Info("recipe_replaced", slog.Int64("recipe_id", id), slog.String("user_id", viewer.UserID))
	return s.Get(ctx, viewer, id)
}

func (s *recipeService) Delete(ctx context.Context, viewer Viewer, id int64) error {
	if viewer.IsAnonymous() {
		return apperr.Unauthorized("authentication required")
	}
	current, err := s.recipes.GetBasic(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutateRecipe(viewer, current) {
		return apperr.Forbidden("only the author can delete this recipe")
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.discardImage(ctx, current.Image, "")
	s.logger.Info("recipe_deleted", slog.Int64("recipe_id", id), slog.String("user_id", viewer.UserID))
	return nil
}

func (s *recipeService) Get(ctx context.Context, viewer Viewer, id int64) (*RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *recipeService) List(ctx context.Context, viewer Viewer, q RecipeQuery) (*RecipePage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	filter := repository.RecipeFilter{
		NamePrefix: q.Name,
		TagSlugs:   q.Tags,
		AuthorID:   q.AuthorID,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	// Anonymous viewers have no favorites or cart, so those filters are
	// dropped rather than matching nothing.
	if !viewer.IsAnonymous() {
		if q.IsFavorited {
			filter.FavoritedBy = viewer.UserID
		}
		if q.IsInShoppingCart {
			filter.InCartOf = viewer.UserID
		}
	}

	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, viewer, recipes)
	if err != nil {
		return nil, err
	}
	return &RecipePage{Count: total, Results: views}, nil
}

func (s *recipeService) Exists(ctx context.Context, id int64) error {
	_, err := s.recipes.GetBasic(ctx, id)
	return err
}

// check runs the composition rules, then field validation, then confirms
// every referenced tag and ingredient exists.
func (s *recipeService) check(ctx context.Context, in RecipeInput, replace bool) error {
	if err := ValidateComposition(in, s.limits, replace); err != nil {
		return err
	}
	if err := s.validator.Validate(in); err != nil {
		return err
	}

	if len(in.TagIDs) > 0 {
		n, err := s.tags.CountByIDs(ctx, in.TagIDs)
		if err != nil {
			return err
		}
		if n != int64(len(in.TagIDs)) {
			return apperr.ErrUnknownTag
		}
	}

	n, err := s.ingredients.CountByIDs(ctx, ingredientIDs(in.Ingredients))
	if err != nil {
		return err
	}
	if n != int64(len(in.Ingredients)) {
		return apperr.ErrUnknownIngredient
	}
	return nil
}

func (s *recipeService) decorate(ctx context.Context, viewer Viewer, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i].Recipe = &recipes[i]
	}
	if viewer.IsAnonymous() || len(recipes) == 0 {
		return views, nil
	}

	ids := make([]int64, len(recipes))
	authors := make([]string, 0, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		authors = append(authors, r.AuthorID)
	}

	favorited, err := s.favorites.Targets(ctx, viewer.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("favorite flags: %w", err)
	}
	inCart, err := s.cart.Targets(ctx, viewer.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("cart flags: %w", err)
	}
	followed, err := s.subscriptions.Targets(ctx, viewer.UserID, authors)
	if err != nil {
		return nil, fmt.Errorf("subscription flags: %w", err)
	}

	fav, cart, sub := setOf(favorited), setOf(inCart), setOf(followed)
	for i, r := range recipes {
		_, views[i].IsFavorited = fav[r.ID]
		_, views[i].IsInShoppingCart = cart[r.ID]
		_, views[i].AuthorSubscribed = sub[r.AuthorID]
	}
	return views, nil
}

// discardImage removes a stored image that is no longer referenced. Input
// values that were not uploaded by us are left alone.
func (s *recipeService) discardImage(ctx context.Context, stored, input string) {
	if stored == "" || stored == input {
		return
	}
	if err := s.images.Delete(ctx, stored); err != nil {
		s.logger.Warn("recipe_image_cleanup_failed", slog.String("image", stored), slog.Any("error", err))
	}
}

func composition(in []IngredientAmount) []models.RecipeIngredient {
	out := make([]models.RecipeIngredient, 0, len(in))
	for _, ing := range in {
		out = append(out, models.RecipeIngredient{IngredientID: ing.ID, Amount: ing.Amount})
	}
	return out
}

func setOf[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
