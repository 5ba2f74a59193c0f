package service

import (
	"fmt"

	"foodgram/internal/apperr"
	"foodgram/internal/config"
)

// IngredientAmount is one requested ingredient line.
type IngredientAmount struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// RecipeInput is the full recipe payload for create and replace.
type RecipeInput struct {
	Name        string             `json:"name" validate:"required,max=256"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time"`
	Image       string             `json:"image"`
	TagIDs      []int64            `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// ValidateComposition applies the recipe rules in order and returns the
// first failure. Replace additionally requires a non-empty tag set.
func ValidateComposition(in RecipeInput, limits config.Limits, replace bool) error {
	if len(in.Ingredients) == 0 {
		return apperr.ErrEmptyIngredients
	}

	seen := make(map[int64]struct{}, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		if _, dup := seen[ing.ID]; dup {
			return apperr.ErrDuplicateIngredient.WithMessage("ingredient %d is listed more than once", ing.ID)
		}
		seen[ing.ID] = struct{}{}
	}

	for i, ing := range in.Ingredients {
		if ing.Amount < limits.AmountMin || ing.Amount > limits.AmountMax {
			return apperr.ErrAmountOutOfRange.
				WithField(fmt.Sprintf("ingredients[%d].amount", i)).
				WithMessage("amount must be between %d and %d", limits.AmountMin, limits.AmountMax)
		}
	}

	tags := make(map[int64]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, dup := tags[id]; dup {
			return apperr.ErrDuplicateTag.WithMessage("tag %d is listed more than once", id)
		}
		tags[id] = struct{}{}
	}

	if in.CookingTime < limits.CookingTimeMin || in.CookingTime > limits.CookingTimeMax {
		return apperr.ErrCookingTimeOutOfRange.
			WithMessage("cooking time must be between %d and %d", limits.CookingTimeMin, limits.CookingTimeMax)
	}

	if in.Image == "" {
		return apperr.ErrMissingImage
	}

	if replace && len(in.TagIDs) == 0 {
		return apperr.ErrMissingTags
	}

	return nil
}

func ingredientIDs(in []IngredientAmount) []int64 {
	ids := make([]int64, 0, len(in))
	for _, ing := range in {
		ids = append(ids, ing.ID)
	}
	return ids
}
