package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/config"
	"github.com/zagros-analytics/suitability-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "suitability-cli",
	Short: "Geospatial multi-criteria suitability analysis",
	Long:  "Generates analysis grids, synthesizes or imports per-criterion measurement tables, computes weighted suitability indices, and answers polygon area queries.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured backend with migrations applied.
func openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
