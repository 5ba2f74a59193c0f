package dto

import (
	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/service"
)

// Page is the list envelope.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

// RecipeIngredientResponse is one ingredient line of a recipe.
type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full recipe with viewer flags.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShort is the compact form returned by favorite/cart adds and
// subscription previews.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// ShortLinkResponse used for GET /api/recipes/:id/get-link
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func NewRecipeResponse(v service.RecipeView) RecipeResponse {
	r := v.Recipe
	resp := RecipeResponse{
		ID:               r.ID,
		Tags:             NewTagList(r.Tags),
		Author:           NewUserResponse(r.Author, v.AuthorSubscribed),
		Ingredients:      make([]RecipeIngredientResponse, 0, len(r.Ingredients)),
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	for _, ri := range r.Ingredients {
		line := RecipeIngredientResponse{ID: ri.IngredientID, Amount: ri.Amount}
		if ri.Ingredient != nil {
			line.Name = ri.Ingredient.Name
			line.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, line)
	}
	return resp
}

func NewRecipePage(p *service.RecipePage) Page[RecipeResponse] {
	out := Page[RecipeResponse]{Count: p.Count, Results: make([]RecipeResponse, 0, len(p.Results))}
	for _, v := range p.Results {
		out.Results = append(out.Results, NewRecipeResponse(v))
	}
	return out
}

func NewRecipeShort(r *models.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func NewRecipeShortList(list []models.Recipe) []RecipeShort {
	out := make([]RecipeShort, 0, len(list))
	for i := range list {
		out = append(out, NewRecipeShort(&list[i]))
	}
	return out
}
