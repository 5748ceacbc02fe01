// Command bigb-sync runs the sync jobs once from the command line.
//
// Usage:
//
//	bigb-sync players
//	bigb-sync stats --season 2025 --week 6 --provider sleeper
//	bigb-sync dedupe --name "Josh Allen" --team BUF --position QB
//	bigb-sync prune
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/BigB742/bigb-analyzer/internal/app"
	"github.com/BigB742/bigb-analyzer/internal/config"
	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

func main() {
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bigb-sync",
		Short:         "Run player and stats sync jobs once",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(playersCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(dedupeCmd())
	root.AddCommand(pruneCmd())
	return root
}

func playersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "Sync the full player catalog from the provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, a *app.App, _ *logging.Logger) (any, error) {
				return a.PlayerSync.SyncAll(ctx)
			})
		},
	}
}

func statsCmd() *cobra.Command {
	var (
		season   int
		week     int
		provider string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch one week of provider stats and upsert week stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, a *app.App, logger *logging.Logger) (any, error) {
				input := a.StatsDefaults()
				if season > 0 {
					input.Season = season
				}
				if week > 0 {
					input.Week = week
				}
				if p := strings.TrimSpace(provider); p != "" {
					input.Provider = p
				}
				logger.Info("stats sync starting", "season", input.Season, "week", input.Week, "provider", input.Provider)
				return a.Reconciler.FetchAndUpsert(ctx, input)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (default SEASON)")
	cmd.Flags().IntVar(&week, "week", 0, "Week number (default CURRENT_WEEK)")
	cmd.Flags().StringVar(&provider, "provider", "", "Stats provider (default STATS_PROVIDER)")
	return cmd
}

func dedupeCmd() *cobra.Command {
	var name, team, position string
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Normalize player identities and remove duplicates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, a *app.App, _ *logging.Logger) (any, error) {
				input := usecase.DedupeInput{}
				if strings.TrimSpace(name) != "" {
					target := player.NormalizeIdentity(name, team, position)
					input.Target = &target
				}
				return a.Dedupe.NormalizeAndDedupe(ctx, input)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Limit the sweep to one identity")
	cmd.Flags().StringVar(&team, "team", "", "Team of the target identity")
	cmd.Flags().StringVar(&position, "position", "", "Position of the target identity")
	return cmd
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete players outside the fantasy positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, a *app.App, _ *logging.Logger) (any, error) {
				pruned, err := a.PlayerSync.Prune(ctx)
				return map[string]int{"pruned": pruned}, err
			})
		},
	}
}

// run loads config, wires the app, runs fn and prints its result as JSON.
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, logger *logging.Logger) (any, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).Named("sync")
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	result, err := fn(ctx, a, logger)
	if err != nil {
		logger.Error("job failed", "command", cmd.Name(), "error", err)
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
