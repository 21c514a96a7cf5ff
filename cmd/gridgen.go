package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/boundary"
	"github.com/zagros-analytics/suitability-cli/internal/grid"
	"github.com/zagros-analytics/suitability-cli/internal/model"
)

var gridGenCmd = &cobra.Command{
	Use:   "grid-gen",
	Short: "Generate the shared analysis grid for the configured region",
	Long:  "Builds the evenly spaced lattice every measurement table is keyed on and stores it. Re-running replaces the stored grid.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "grid-gen"))

		nLat, _ := cmd.Flags().GetInt("n-lat")
		nLon, _ := cmd.Flags().GetInt("n-lon")
		if nLat == 0 {
			nLat = cfg.Grid.NLat
		}
		if nLon == 0 {
			nLon = cfg.Grid.NLon
		}

		points, err := grid.Generate(cfg.Region.Bounds(), nLat, nLon)
		if err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if name, _ := cmd.Flags().GetString("boundary"); name != "" {
			data, err := s.Boundary(ctx, name)
			if err != nil {
				return err
			}
			ring, err := boundary.DecodeRing(data)
			if err != nil {
				return err
			}
			kept := make([]model.GridPoint, 0, len(points))
			for _, p := range points {
				if ring.ContainsBuffered(p.Lon, p.Lat, 0) {
					kept = append(kept, p)
				}
			}
			log.Info("grid clipped to boundary",
				zap.String("boundary", name),
				zap.Int("dropped", len(points)-len(kept)),
			)
			points = kept
		}

		if err := s.SaveGridPoints(ctx, points); err != nil {
			return err
		}
		if _, err := s.RecordRun(ctx, "grid-gen", cfg.Region.Name); err != nil {
			return err
		}

		latKM, lonKM := grid.Spacing(cfg.Region.Bounds(), nLat, nLon)
		log.Info("grid generated",
			zap.String("region", cfg.Region.Name),
			zap.Int("points", len(points)),
			zap.Float64("spacing_lat_km", latKM),
			zap.Float64("spacing_lon_km", lonKM),
		)
		return nil
	},
}

func init() {
	gridGenCmd.Flags().Int("n-lat", 0, "latitude resolution (default from config)")
	gridGenCmd.Flags().Int("n-lon", 0, "longitude resolution (default from config)")
	gridGenCmd.Flags().String("boundary", "", "drop points outside this stored boundary")
	rootCmd.AddCommand(gridGenCmd)
}
