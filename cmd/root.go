package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/knowme/internal/app"
	"github.com/abhisek/knowme/internal/config"
	"github.com/abhisek/knowme/internal/logging"
	"github.com/abhisek/knowme/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "knowme",
	Short: "How well do your friends know you?",
	Long: "KnowMe is a chat bot that lets you build a quiz about yourself, share the link\n" +
		"and find out which friends know you best.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides db.path and KNOWME_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config, then environment overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from config, then KNOWME_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

// buildApp loads configuration and assembles the bot. quietLog keeps the
// logger off stderr for full-screen commands.
func buildApp(ctx context.Context, cmd *cobra.Command, quietLog bool) (*app.App, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}

	log, flush, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Format: cfg.Log.Format,
		Quiet:  quietLog,
	})
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, app.Options{Config: cfg, DBPath: dbPath, Logger: log})
	if err != nil {
		flush()
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", zap.Error(err))
		}
		flush()
	}
	return a, cleanup, nil
}
