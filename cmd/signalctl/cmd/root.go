// Package cmd содержит команды signalctl.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"example.com/cost-signal/backend/internal/config"
	"example.com/cost-signal/backend/internal/database"
	"example.com/cost-signal/backend/internal/logging"
	"example.com/cost-signal/backend/migrations"
)

const dateLayout = "2006-01-02"

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "signalctl",
	Short: "Cost Signal operator CLI",
	Long: `Cost Signal operator CLI.

Commands:
    run         fetch indicators and compute the current week
    recompute   rebuild a week's signal from stored readings
    show        print recent weekly signals
    evaluate    apply an indicator rule offline, without a database
    token       issue an access token for a user
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			_ = os.Setenv("ENV_FILE", envFile)
		}
	},
}

// Execute запускает корневую команду.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// env хранит общие зависимости команд, которым нужна база.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	db     *pgxpool.Pool
	close  func()
}

func openEnv(ctx context.Context, stderr io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, closeLog, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.Files); err != nil {
			db.Close()
			_ = closeLog()
			return nil, err
		}
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		db:     db,
		close: func() {
			db.Close()
			_ = closeLog()
		},
	}, nil
}

func parseWeekFlag(raw string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("week must be YYYY-MM-DD: %w", err)
	}
	return day, nil
}
