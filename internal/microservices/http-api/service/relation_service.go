package service

import (
	"context"
	"log/slog"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

// RelationToggle adds and removes one kind of owner→target pair. T is the
// target id type.
type RelationToggle[T comparable] struct {
	repo   repository.RelationRepository[T]
	exists func(ctx context.Context, id T) error
	logger *slog.Logger
}

// NewRelationToggle builds a toggle. exists must return a not-found error
// for targets that do not exist.
func NewRelationToggle[T comparable](repo repository.RelationRepository[T], exists func(context.Context, T) error, logger *slog.Logger) *RelationToggle[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationToggle[T]{repo: repo, exists: exists, logger: logger}
}

func (r *RelationToggle[T]) Kind() models.RelationKind {
	return r.repo.Kind()
}

// Add records the pair. A self reference is rejected before any lookup; a
// duplicate pair comes back as apperr.ErrAlreadyExists, also for the loser
// of a concurrent add.
func (r *RelationToggle[T]) Add(ctx context.Context, ownerID string, targetID T) (*models.Relation[T], error) {
	kind := r.repo.Kind()
	if kind.ForbidSelf && any(targetID) == any(ownerID) {
		return nil, apperr.ErrSelfReferenceForbidden
	}
	if err := r.exists(ctx, targetID); err != nil {
		return nil, err
	}

	created, err := r.repo.Add(ctx, ownerID, targetID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("relation_added",
		slog.String("kind", kind.Name),
		slog.String("owner_id", ownerID),
		slog.Any("target_id", targetID),
	)
	return &models.Relation[T]{
		Kind:      kind.Name,
		OwnerID:   ownerID,
		TargetID:  targetID,
		CreatedAt: created,
	}, nil
}

// Remove deletes the pair or fails with apperr.ErrRelationNotFound.
func (r *RelationToggle[T]) Remove(ctx context.Context, ownerID string, targetID T) error {
	if err := r.repo.Remove(ctx, ownerID, targetID); err != nil {
		return err
	}
	r.logger.Info("relation_removed",
		slog.String("kind", r.repo.Kind().Name),
		slog.String("owner_id", ownerID),
		slog.Any("target_id", targetID),
	)
	return nil
}

// Has is false for anonymous viewers and on lookup failure.
func (r *RelationToggle[T]) Has(ctx context.Context, viewer Viewer, targetID T) bool {
	if viewer.IsAnonymous() {
		return false
	}
	ok, err := r.repo.Exists(ctx, viewer.UserID, targetID)
	if err != nil {
		r.logger.Warn("relation_lookup_failed", slog.String("kind", r.repo.Kind().Name), slog.Any("error", err))
		return false
	}
	return ok
}

// Flags reports, for each of ids, whether viewer holds the relation.
func (r *RelationToggle[T]) Flags(ctx context.Context, viewer Viewer, ids []T) map[T]bool {
	flags := make(map[T]bool, len(ids))
	if viewer.IsAnonymous() || len(ids) == 0 {
		return flags
	}
	targets, err := r.repo.Targets(ctx, viewer.UserID, ids)
	if err != nil {
		r.logger.Warn("relation_lookup_failed", slog.String("kind", r.repo.Kind().Name), slog.Any("error", err))
		return flags
	}
	for _, id := range targets {
		flags[id] = true
	}
	return flags
}

// RecipeRelationService backs both favorites and the shopping cart.
type RecipeRelationService struct {
	toggle  *RelationToggle[int64]
	recipes repository.RecipeRepository
}

func newRecipeRelationService(repo repository.RelationRepository[int64], recipes repository.RecipeRepository, logger *slog.Logger) *RecipeRelationService {
	exists := func(ctx context.Context, id int64) error {
		_, err := recipes.GetBasic(ctx, id)
		return err
	}
	return &RecipeRelationService{
		toggle:  NewRelationToggle(repo, exists, logger),
		recipes: recipes,
	}
}

func NewFavoriteService(repo repository.RelationRepository[int64], recipes repository.RecipeRepository, logger *slog.Logger) *RecipeRelationService {
	return newRecipeRelationService(repo, recipes, logger)
}

func NewShoppingCartService(repo repository.RelationRepository[int64], recipes repository.RecipeRepository, logger *slog.Logger) *RecipeRelationService {
	return newRecipeRelationService(repo, recipes, logger)
}

// Add returns the recipe row so the caller can render its short form.
func (s *RecipeRelationService) Add(ctx context.Context, userID string, recipeID int64) (*models.Recipe, error) {
	if _, err := s.toggle.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.GetBasic(ctx, recipeID)
}

func (s *RecipeRelationService) Remove(ctx context.Context, userID string, recipeID int64) error {
	return s.toggle.Remove(ctx, userID, recipeID)
}

// AuthorRecipes is a followed author with a preview of their recipes.
type AuthorRecipes struct {
	User         *models.User
	Recipes      []models.Recipe
	RecipesCount int64
	IsSubscribed bool
}

type SubscriptionPage struct {
	Count   int64
	Results []AuthorRecipes
}

type SubscriptionService struct {
	toggle  *RelationToggle[string]
	repo    repository.RelationRepository[string]
	users   repository.UserRepository
	recipes repository.RecipeRepository
}

func NewSubscriptionService(repo repository.RelationRepository[string], users repository.UserRepository, recipes repository.RecipeRepository, logger *slog.Logger) *SubscriptionService {
	exists := func(ctx context.Context, id string) error {
		_, err := users.FindByID(ctx, id)
		return err
	}
	return &SubscriptionService{
		toggle:  NewRelationToggle(repo, exists, logger),
		repo:    repo,
		users:   users,
		recipes: recipes,
	}
}

// Subscribe makes followerID follow authorID and returns the author view.
// recipesLimit <= 0 means no preview limit.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, authorID string, recipesLimit int) (*AuthorRecipes, error) {
	if _, err := s.toggle.Add(ctx, followerID, authorID); err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	views, err := s.withRecipes(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, authorID string) error {
	return s.toggle.Remove(ctx, followerID, authorID)
}

// IsSubscribed is false for anonymous viewers.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, viewer Viewer, authorID string) bool {
	return s.toggle.Has(ctx, viewer, authorID)
}

// List returns the authors followerID follows, newest subscription first.
func (s *SubscriptionService) List(ctx context.Context, followerID string, recipesLimit, limit, offset int) (*SubscriptionPage, error) {
	ids, total, err := s.repo.List(ctx, followerID, limit, offset)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}

	views, err := s.withRecipes(ctx, ordered, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &SubscriptionPage{Count: total, Results: views}, nil
}

func (s *SubscriptionService) withRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]AuthorRecipes, error) {
	ids := make([]string, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]AuthorRecipes, len(authors))
	for i := range authors {
		recipes, err := s.recipes.ListByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		views[i] = AuthorRecipes{
			User:         &authors[i],
			Recipes:      recipes,
			RecipesCount: counts[authors[i].ID],
			IsSubscribed: true,
		}
	}
	return views, nil
}
