// Command rhythms is the household rhythm tracker CLI: recurring tasks,
// habit blocks, and garden challenges over a local store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/graceolivia/rhythms/internal/config"
	"github.com/graceolivia/rhythms/internal/service"
	"github.com/graceolivia/rhythms/internal/storage"
	"github.com/graceolivia/rhythms/internal/storage/fs"
	"github.com/graceolivia/rhythms/internal/storage/sqlite"
	"github.com/graceolivia/rhythms/pkg/observability"
)

const serviceName = "rhythms"

var rootCmd = &cobra.Command{
	Use:   "rhythms",
	Short: "Household rhythm tracker",
	Long: `rhythms keeps a household's recurring tasks on schedule: anchors,
rhythms and tending work, habit blocks through the day, and garden
challenges that bloom when you follow through.`,
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

func init() {
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(deferCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(seedsCmd)
	rootCmd.AddCommand(upcomingCmd)
	rootCmd.AddCommand(availabilityCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(gardenCmd)
	rootCmd.AddCommand(childCmd)
}

// withService boots config, observability and storage, runs fn, and shuts
// everything down in order.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerProvider, logger, err := observability.InitLogger(ctx, serviceName, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	slog.SetDefault(logger)
	defer loggerProvider.Shutdown(context.Background())

	meterProvider, err := observability.InitMeterProvider(ctx, serviceName, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := service.New(store)
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageType {
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		store, err := fs.NewStore(cfg.FSDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open fs store: %w", err)
		}
		return store, func() {}, nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
