package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/fetcher"
	"github.com/zagros-analytics/suitability-cli/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export <out-file>",
	Short: "Export stored results to CSV or XLSX",
	Long:  "Writes the composite index for a date to .xlsx, or one criterion's measurement table to .csv, inferred from the file extension.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := args[0]
		date, _ := cmd.Flags().GetString("date")
		criterion, _ := cmd.Flags().GetString("criterion")

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		log := zap.L().With(zap.String("command", "export"))

		switch {
		case strings.HasSuffix(out, ".xlsx"):
			if date == "" {
				date, err = s.LatestCompositeDate(ctx)
				if err != nil {
					return err
				}
				if date == "" {
					return eris.New("export: no stored composite index, run index first")
				}
			}
			results, err := s.Composite(ctx, date)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return eris.Errorf("export: no composite index for %s", date)
			}
			if err := report.WriteCompositeXLSX(out, date, results); err != nil {
				return err
			}
			log.Info("composite index exported",
				zap.String("path", out),
				zap.String("date", date),
				zap.Int("rows", len(results)),
			)

		case strings.HasSuffix(out, ".csv"):
			if criterion == "" {
				return eris.New("export: --criterion is required for CSV export")
			}
			if date == "" {
				date, err = s.LatestDate(ctx, criterion)
				if err != nil {
					return err
				}
				if date == "" {
					return eris.Errorf("export: no stored data for criterion %q", criterion)
				}
			}
			rows, err := s.Measurements(ctx, criterion, date)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return eris.Errorf("export: no rows for %s at %s", criterion, date)
			}

			file, err := os.Create(out)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", out)
			}
			defer file.Close() //nolint:errcheck
			if err := fetcher.EncodeMeasurements(file, rows); err != nil {
				return err
			}
			log.Info("measurements exported",
				zap.String("path", out),
				zap.String("criterion", criterion),
				zap.String("date", date),
				zap.Int("rows", len(rows)),
			)

		default:
			return eris.Errorf("export: unsupported extension on %q, use .csv or .xlsx", out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("date", "", "observation date (default: latest stored)")
	exportCmd.Flags().String("criterion", "", "criterion for CSV export")
	rootCmd.AddCommand(exportCmd)
}
