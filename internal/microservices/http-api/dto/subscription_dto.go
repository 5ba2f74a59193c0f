package dto

import "foodgram/internal/microservices/http-api/service"

// SubscriptionResponse is a followed author with a preview of their
// recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

func NewSubscriptionResponse(a service.AuthorRecipes) SubscriptionResponse {
	return SubscriptionResponse{
		UserResponse: NewUserResponse(a.User, a.IsSubscribed),
		Recipes:      NewRecipeShortList(a.Recipes),
		RecipesCount: a.RecipesCount,
	}
}

func NewSubscriptionPage(p *service.SubscriptionPage) Page[SubscriptionResponse] {
	out := Page[SubscriptionResponse]{Count: p.Count, Results: make([]SubscriptionResponse, 0, len(p.Results))}
	for _, a := range p.Results {
		out.Results = append(out.Results, NewSubscriptionResponse(a))
	}
	return out
}
