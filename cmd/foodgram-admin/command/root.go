package command

// root.go defines the root command for foodgram-admin and the shared
// bootstrap every subcommand runs before touching the database.

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"foodgram/database"
	"foodgram/internal/config"
	"foodgram/internal/logger"
)

var verbose bool // raise the log level to debug

var rootCmd = &cobra.Command{
	Use:   "foodgram-admin",
	Short: "foodgram-admin - operator tooling for the Foodgram API",
	Long: `foodgram-admin runs maintenance tasks against the Foodgram database using the
same environment (.env, DATABASE_URL, JWT_SECRET, ...) as the API server:
- apply schema migrations
- promote a user to admin
- export a user's shopping list as text or PDF

Use "foodgram-admin command --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// env is what every database-backed command needs.
type env struct {
	cfg *config.Config
	log *slog.Logger
	db  *gorm.DB
}

func (e *env) Close() {
	if e.db != nil {
		_ = database.Close(e.db)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	// logs go to stderr so exported files can be piped from stdout
	return cfg, logger.NewWithWriter(os.Stderr, "text", level), nil
}

func openEnv() (*env, error) {
	cfg, lg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg, lg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: lg, db: db}, nil
}
