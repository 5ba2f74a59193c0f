package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"foodgram/internal/microservices/http-api/models"
	"foodgram/internal/microservices/http-api/repository"
	"foodgram/internal/microservices/http-api/service"
	"foodgram/internal/validation"
)

type promoter interface {
	Promote(ctx context.Context, username string) error
}

var promoteCmd = &cobra.Command{
	Use:   "promote [username]",
	Short: "Grant the admin role to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		users := service.NewUserService(
			repository.NewUserRepository(e.db),
			repository.NewRelationRepository[string](e.db, models.SubscriptionRelation),
			nil, validation.New(), e.log,
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return promote(ctx, cmd.OutOrStdout(), users, args[0])
	},
}

func promote(ctx context.Context, out io.Writer, users promoter, username string) error {
	if err := users.Promote(ctx, username); err != nil {
		return fmt.Errorf("promote %s: %w", username, err)
	}
	fmt.Fprintf(out, "✓ %s is now an admin\n", username)
	return nil
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}
