package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/boundary"
)

var boundaryImportCmd = &cobra.Command{
	Use:   "boundary-import <file.shp>",
	Short: "Import administrative boundaries from a shapefile",
	Long:  "Reads every polygon record, encodes it as EWKB, and stores it by name for later use as a query clip region.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "boundary-import"))

		nameField, _ := cmd.Flags().GetString("name-field")
		shapes, err := boundary.ReadShapefile(args[0], nameField)
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, shape := range shapes {
			if err := s.SaveBoundary(ctx, shape.Name, shape.EWKB); err != nil {
				return err
			}
			log.Info("boundary stored",
				zap.String("name", shape.Name),
				zap.Int("ewkb_bytes", len(shape.EWKB)),
			)
		}
		if _, err := s.RecordRun(ctx, "boundary-import", args[0]); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	boundaryImportCmd.Flags().String("name-field", "NAME", "attribute field carrying the boundary name")
	rootCmd.AddCommand(boundaryImportCmd)
}
