package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/microservices/http-api/service"
	"foodgram/internal/render"
)

var (
	listFormat string
	listOut    string
)

type userFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type shoppingLister interface {
	Aggregate(ctx context.Context, userID string) ([]models.ShoppingItem, error)
}

var shoppingListCmd = &cobra.Command{
	Use:   "shopping-list [username]",
	Short: "Export a user's aggregated shopping list",
	Long: `Sum the ingredients of every recipe in the user's shopping cart and write the
list as text (default) or PDF. Without --out the document goes to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if listOut != "" {
			f, err := os.Create(listOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", listOut, err)
			}
			defer f.Close()
			out = f
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return exportShoppingList(ctx, out,
			repository.NewUserRepository(e.db),
			service.NewShoppingListService(repository.NewRecipeRepository(e.db), e.log),
			args[0], listFormat,
		)
	},
}

func exportShoppingList(ctx context.Context, out io.Writer, users userFinder, lister shoppingLister, username, format string) error {
	renderer, err := render.ForFormat(format)
	if err != nil {
		return err
	}
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("find %s: %w", username, err)
	}
	items, err := lister.Aggregate(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("build shopping list: %w", err)
	}
	return renderer.Render(out, items)
}

func init() {
	shoppingListCmd.Flags().StringVarP(&listFormat, "format", "f", "txt", "output format: txt or pdf")
	shoppingListCmd.Flags().StringVarP(&listOut, "out", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(shoppingListCmd)
}
