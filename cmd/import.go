package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/fetcher"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a measurement CSV for one criterion",
	Long:  "Loads grid-keyed measurement rows from CSV into the store. Rows with the same (criterion, date, grid id) replace earlier imports.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		criterion, _ := cmd.Flags().GetString("criterion")
		if criterion == "" {
			return eris.New("import: --criterion is required")
		}
		if cfg.Criterion(criterion) == nil {
			zap.L().Warn("importing a criterion not present in config; it will be ignored by index and query until configured",
				zap.String("criterion", criterion))
		}

		file, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "import: open %s", args[0])
		}
		defer file.Close() //nolint:errcheck

		rows, err := fetcher.DecodeMeasurements(file)
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SaveMeasurements(ctx, criterion, rows); err != nil {
			return err
		}
		if _, err := s.RecordRun(ctx, "import", args[0]); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("criterion", criterion),
			zap.String("file", args[0]),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().String("criterion", "", "criterion the file belongs to")
	rootCmd.AddCommand(importCmd)
}
