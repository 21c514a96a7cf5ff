package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/areaquery"
	"github.com/zagros-analytics/suitability-cli/internal/boundary"
	"github.com/zagros-analytics/suitability-cli/internal/model"
	"github.com/zagros-analytics/suitability-cli/internal/recommend"
	"github.com/zagros-analytics/suitability-cli/internal/report"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a suitability query over a drawn or stored area",
	Long:  "Evaluates every configured criterion inside a polygon, circle, or stored boundary and prints the per-criterion and overall verdict as JSON. Vertex order (lon/lat vs lat/lon) is resolved automatically.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		coordsJSON, _ := cmd.Flags().GetString("coords")
		boundaryName, _ := cmd.Flags().GetString("boundary")
		circle, _ := cmd.Flags().GetFloat64Slice("circle")
		buffer, _ := cmd.Flags().GetFloat64("buffer")
		date, _ := cmd.Flags().GetString("date")
		datasets, _ := cmd.Flags().GetStringSlice("datasets")
		xlsxOut, _ := cmd.Flags().GetString("xlsx")

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		catalog, err := recommend.Load(cfg.Recommend.CatalogPath)
		if err != nil {
			return err
		}
		engine := areaquery.New(s, cfg, catalog)
		params := areaquery.Params{BufferDeg: buffer, Date: date, Datasets: datasets}

		var result model.AreaResult
		switch {
		case coordsJSON != "":
			params.Coordinates, err = parseCoords([]byte(coordsJSON))
			if err != nil {
				return err
			}
			result, err = engine.Query(ctx, params)
		case boundaryName != "":
			data, berr := s.Boundary(ctx, boundaryName)
			if berr != nil {
				return berr
			}
			ring, berr := boundary.DecodeRing(data)
			if berr != nil {
				return berr
			}
			params.Coordinates = ring.Vertices()
			result, err = engine.Query(ctx, params)
		case len(circle) == 3:
			result, err = engine.QueryCircle(ctx, circle[0], circle[1], circle[2], params)
		default:
			return eris.New("query: provide --coords, --boundary, or --circle a,b,radius")
		}
		if err != nil {
			return err
		}

		if xlsxOut != "" {
			if err := report.WriteAreaXLSX(xlsxOut, result); err != nil {
				return err
			}
			zap.L().Info("area report written", zap.String("path", xlsxOut))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "query: encode result")
	},
}

// parseCoords accepts a bare vertex list or a GeoJSON-style nested polygon,
// in which case the outer ring is used.
func parseCoords(data []byte) ([][]float64, error) {
	var flat [][]float64
	if err := json.Unmarshal(data, &flat); err == nil {
		return flat, nil
	}
	var nested [][][]float64
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	return nil, eris.New("query: --coords must be [[a,b],...] or [[[a,b],...]]")
}

func init() {
	queryCmd.Flags().String("coords", "", "polygon vertices as JSON")
	queryCmd.Flags().String("boundary", "", "name of a stored boundary to query")
	queryCmd.Flags().Float64Slice("circle", nil, "circle as a,b,radius_deg")
	queryCmd.Flags().Float64("buffer", 0, "containment buffer in degrees (default from config)")
	queryCmd.Flags().String("date", "", "observation date (default: latest per criterion)")
	queryCmd.Flags().StringSlice("datasets", nil, "restrict to these criteria")
	queryCmd.Flags().String("xlsx", "", "also write the result to this workbook")
	rootCmd.AddCommand(queryCmd)
}
