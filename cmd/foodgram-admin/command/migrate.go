package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"foodgram/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update all tables and constraints",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := database.Migrate(e.db, e.log); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
