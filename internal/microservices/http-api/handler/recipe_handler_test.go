package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodgram/internal/apperr"
	"foodgram/internal/microservices/http-api/handler"
	"foodgram/internal/microservices/http-api/middleware"
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/service"
)

// --- MOCK SERVICE ---

type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, viewer service.Viewer, in service.RecipeInput) (*service.RecipeView, error) {
	args := m.Called(ctx, viewer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) Replace(ctx context.Context, viewer service.Viewer, id int64, in service.RecipeInput) (*service.RecipeView, error) {
	args := m.Called(ctx, viewer, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, viewer service.Viewer, id int64) error {
	return m.Called(ctx, viewer, id).Error(0)
}

func (m *MockRecipeService) Get(ctx context.Context, viewer service.Viewer, id int64) (*service.RecipeView, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeView), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, viewer service.Viewer, q service.RecipeQuery) (*service.RecipePage, error) {
	args := m.Called(ctx, viewer, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipePage), args.Error(1)
}

func (m *MockRecipeService) Exists(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- SETUP ---

// mockAuth stands in for the token middlewares. An empty userID leaves the
// request anonymous; Required then rejects it.
func mockAuth(userID string, admin bool) handler.Auth {
	set := func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.KeyUserID, userID)
			c.Set(middleware.KeyIsAdmin, admin)
		}
	}
	return handler.Auth{
		Optional: func(c *gin.Context) { set(c); c.Next() },
		Required: func(c *gin.Context) {
			set(c)
			if userID == "" {
				middleware.RespondError(c, apperr.Unauthorized("missing authorization header"))
				c.Abort()
				return
			}
			c.Next()
		},
		Admin: middleware.RequireAdmin(),
	}
}

func setupRecipeRouter(svc *MockRecipeService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewRecipeHandler(svc, 6).RegisterRoutes(r.Group("/api/recipes"), mockAuth(userID, false))
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleView() *service.RecipeView {
	return &service.RecipeView{
		Recipe: &models.Recipe{
			ID:          1,
			AuthorID:    "u1",
			Name:        "Pancakes",
			Text:        "Mix and fry.",
			CookingTime: 20,
			Image:       "/media/recipes/images/p.png",
			Author:      &models.User{ID: "u1", Username: "chef"},
			Tags:        []models.Tag{{ID: 1, Name: "Breakfast", Slug: "breakfast"}},
			Ingredients: []models.RecipeIngredient{{
				IngredientID: 10,
				Amount:       200,
				Ingredient:   &models.Ingredient{ID: 10, Name: "Flour", MeasurementUnit: "g"},
			}},
		},
		IsInShoppingCart: true,
	}
}

// --- TESTS ---

func TestRecipeHandler_List(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "")

	svc.On("List", mock.Anything, service.Anonymous, service.RecipeQuery{
		Name:        "Pan",
		Tags:        []string{"breakfast", "lunch"},
		IsFavorited: true,
		Page:        2,
		Limit:       6,
	}).Return(&service.RecipePage{Count: 7, Results: []service.RecipeView{*sampleView()}}, nil)

	w := doJSON(r, http.MethodGet, "/api/recipes?name=Pan&tags=breakfast&tags=lunch&is_favorited=1&page=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count   int64            `json:"count"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, true, body.Results[0]["is_in_shopping_cart"])
	svc.AssertExpectations(t)
}

func TestRecipeHandler_Get(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "u2")

	svc.On("Get", mock.Anything, service.Viewer{UserID: "u2"}, int64(1)).Return(sampleView(), nil)

	w := doJSON(r, http.MethodGet, "/api/recipes/1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Pancakes", body["name"])
	ingredients := body["ingredients"].([]any)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "Flour", ingredients[0].(map[string]any)["name"])
	assert.Equal(t, "chef", body["author"].(map[string]any)["username"])
}

func TestRecipeHandler_GetNotFound(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "")

	svc.On("Get", mock.Anything, service.Anonymous, int64(9)).Return(nil, apperr.ErrRecipeNotFound)

	w := doJSON(r, http.MethodGet, "/api/recipes/9", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "recipe_not_found")
}

func TestRecipeHandler_InvalidID(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "")

	w := doJSON(r, http.MethodGet, "/api/recipes/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecipeHandler_CreateRequiresAuth(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "")

	w := doJSON(r, http.MethodPost, "/api/recipes", map[string]any{"name": "x"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecipeHandler_Create(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "u1")

	payload := map[string]any{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"image":        "data:image/png;base64,iVBORw0KGgo=",
		"tags":         []int64{1},
		"ingredients":  []map[string]any{{"id": 10, "amount": 200}},
	}
	svc.On("Create", mock.Anything, service.Viewer{UserID: "u1"}, mock.MatchedBy(func(in service.RecipeInput) bool {
		return in.Name == "Pancakes" && len(in.Ingredients) == 1 && in.Ingredients[0].Amount == 200 && in.TagIDs[0] == 1
	})).Return(sampleView(), nil)

	w := doJSON(r, http.MethodPost, "/api/recipes", payload)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestRecipeHandler_CreateValidationError(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "u1")

	svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperr.ErrDuplicateIngredient)

	w := doJSON(r, http.MethodPost, "/api/recipes", map[string]any{"name": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"ingredients must not repeat","reason":"duplicate_ingredient","field":"ingredients"}`, w.Body.String())
}

func TestRecipeHandler_CreateMalformedBody(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeHandler_ReplaceForbidden(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "intruder")

	svc.On("Replace", mock.Anything, service.Viewer{UserID: "intruder"}, int64(1), mock.Anything).
		Return(nil, apperr.Forbidden("only the author can change this recipe"))

	w := doJSON(r, http.MethodPatch, "/api/recipes/1", map[string]any{"name": "x"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecipeHandler_Delete(t *testing.T) {
	svc := new(MockRecipeService)
	r := setupRecipeRouter(svc, "u1")

	svc.On("Delete", mock.Anything, service.Viewer{UserID: "u1"}, int64(1)).Return(nil)

	w := doJSON(r, http.MethodDelete, "/api/recipes/1", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
