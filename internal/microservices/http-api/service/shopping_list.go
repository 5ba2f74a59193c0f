package service

import (
	"context"
	"log/slog"
	"sort"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
)

type ShoppingListService struct {
	recipes repository.RecipeRepository
	logger  *slog.Logger
}

func NewShoppingListService(recipes repository.RecipeRepository, logger *slog.Logger) *ShoppingListService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShoppingListService{recipes: recipes, logger: logger}
}

// Aggregate sums every ingredient reachable from userID's cart. An empty
// cart yields an empty, non-nil list.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID string) ([]models.ShoppingItem, error) {
	lines, err := s.recipes.ShoppingLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := AggregateLines(lines)
	s.logger.Debug("shopping_list_built",
		slog.String("user_id", userID),
		slog.Int("lines", len(lines)),
		slog.Int("items", len(items)),
	)
	return items, nil
}

type shoppingKey struct {
	name, unit string
}

// AggregateLines groups lines by (name, unit) and sums amounts. The same
// name under two units stays two items. Output is sorted by name, then
// unit, in byte order.
func AggregateLines(lines []models.ShoppingLine) []models.ShoppingItem {
	totals := make(map[shoppingKey]int, len(lines))
	for _, l := range lines {
		totals[shoppingKey{l.Name, l.Unit}] += l.Amount
	}

	items := make([]models.ShoppingItem, 0, len(totals))
	for k, total := range totals {
		items = append(items, models.ShoppingItem{Name: k.name, Unit: k.unit, Total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}
