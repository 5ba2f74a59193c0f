package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRecipeRepository mocks the RecipeRepository interface
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *models.Recipe, tagIDs []int64, ingredients []models.RecipeIngredient) error {
	args := m.Called(ctx, recipe, tagIDs, ingredients)
	return args.Error(0)
}

func (m *MockRecipeRepository) Replace(ctx context.Context, recipe *models.Recipe, tagIDs []int64, ingredients []models.RecipeIngredient) error {
	args := m.Called(ctx, recipe, tagIDs, ingredients)
	return args.Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) GetBasic(ctx context.Context, id int64) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, f repository.RecipeFilter) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, authorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) CountByAuthors(ctx context.Context, authorIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, authorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockRecipeRepository) ShoppingLines(ctx context.Context, userID string) ([]models.ShoppingLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShoppingLine), args.Error(1)
}

// MockTagRepository mocks the TagRepository interface
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *MockTagRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockIngredientRepository mocks the IngredientRepository interface
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) List(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) GetByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	return m.Called(ctx, ingredient).Error(0)
}

func (m *MockIngredientRepository) CountByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockRelationRepository mocks RelationRepository for either target type.
type MockRelationRepository[T comparable] struct {
	mock.Mock
	kind models.RelationKind
}

func newMockRelations[T comparable](kind models.RelationKind) *MockRelationRepository[T] {
	return &MockRelationRepository[T]{kind: kind}
}

func (m *MockRelationRepository[T]) Kind() models.RelationKind {
	return m.kind
}

func (m *MockRelationRepository[T]) Add(ctx context.Context, ownerID string, targetID T) (time.Time, error) {
	args := m.Called(ctx, ownerID, targetID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRelationRepository[T]) Remove(ctx context.Context, ownerID string, targetID T) error {
	return m.Called(ctx, ownerID, targetID).Error(0)
}

func (m *MockRelationRepository[T]) Exists(ctx context.Context, ownerID string, targetID T) (bool, error) {
	args := m.Called(ctx, ownerID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationRepository[T]) Targets(ctx context.Context, ownerID string, targetIDs []T) ([]T, error) {
	args := m.Called(ctx, ownerID, targetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRelationRepository[T]) List(ctx context.Context, ownerID string, limit, offset int) ([]T, int64, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]T), args.Get(1).(int64), args.Error(2)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, id string, avatar *string) error {
	return m.Called(ctx, id, avatar).Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, username, role string) error {
	return m.Called(ctx, username, role).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

// MockShortLinkRepository mocks the ShortLinkRepository interface
type MockShortLinkRepository struct {
	mock.Mock
}

func (m *MockShortLinkRepository) Create(ctx context.Context, link *models.ShortLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockShortLinkRepository) FindByURL(ctx context.Context, url string) (*models.ShortLink, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShortLink), args.Error(1)
}

func (m *MockShortLinkRepository) FindByToken(ctx context.Context, token string) (*models.ShortLink, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShortLink), args.Error(1)
}

// MockImageUploader mocks ImageUploader
type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) Save(ctx context.Context, prefix, value, current string) (string, error) {
	args := m.Called(ctx, prefix, value, current)
	return args.String(0), args.Error(1)
}

func (m *MockImageUploader) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

// MockLinkCache mocks LinkCache
type MockLinkCache struct {
	mock.Mock
}

func (m *MockLinkCache) Get(ctx context.Context, token string) (string, bool, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLinkCache) Set(ctx context.Context, token, url string) error {
	return m.Called(ctx, token, url).Error(0)
}
