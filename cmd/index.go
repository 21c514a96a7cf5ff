package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/model"
	"github.com/zagros-analytics/suitability-cli/internal/scoring"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Compute the weighted composite index over the grid",
	Long:  "Normalizes each criterion against its guideline, combines them by weight at every grid point, and stores the per-point index for one date. Points where no criterion has data stay undefined.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "index"))

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date, err = s.LatestDate(ctx, cfg.Query.ReferenceDataset)
			if err != nil {
				return err
			}
			if date == "" {
				return eris.Errorf("index: no stored data for reference dataset %q, import or synthesize first", cfg.Query.ReferenceDataset)
			}
		}

		points, err := s.GridPoints(ctx)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			return eris.New("index: no stored grid, run grid-gen first")
		}

		// One value lookup per criterion, keyed on grid id.
		type criterionTable struct {
			values map[int]float64
			weight float64
			guide  float64
			dir    model.Direction
		}
		tables := make(map[string]criterionTable, len(cfg.Criteria))
		for _, crit := range cfg.Criteria {
			dir, err := crit.ParsedDirection()
			if err != nil {
				return err
			}
			rows, err := s.Measurements(ctx, crit.Name, date)
			if err != nil {
				return err
			}
			values := make(map[int]float64, len(rows))
			for _, r := range rows {
				values[r.GridID] = r.Value
			}
			tables[crit.Name] = criterionTable{values: values, weight: crit.Weight, guide: crit.Guideline, dir: dir}
			if len(rows) == 0 {
				log.Warn("criterion has no rows at date, it will not contribute",
					zap.String("criterion", crit.Name),
					zap.String("date", date),
				)
			}
		}

		results := make([]model.CompositeResult, 0, len(points))
		defined := 0
		categories := make(map[string]int)
		for _, p := range points {
			samples := make(map[string]scoring.CriterionSample, len(tables))
			for name, tbl := range tables {
				if v, ok := tbl.values[p.ID]; ok {
					samples[name] = scoring.CriterionSample{Value: v, Weight: tbl.weight, Guideline: tbl.guide, Direction: tbl.dir}
				} else {
					samples[name] = scoring.Absent(tbl.weight, tbl.guide, tbl.dir)
				}
			}
			r := scoring.Aggregate(p.ID, date, samples, cfg.Bands.Index)
			if r.Defined {
				defined++
				categories[r.Category]++
			}
			results = append(results, r)
		}

		if err := s.SaveComposite(ctx, results); err != nil {
			return err
		}
		if _, err := s.RecordRun(ctx, "index", date); err != nil {
			return err
		}

		log.Info("composite index computed",
			zap.String("date", date),
			zap.Int("points", len(points)),
			zap.Int("defined", defined),
			zap.Int("undefined", len(points)-defined),
			zap.Any("categories", categories),
		)
		return nil
	},
}

func init() {
	indexCmd.Flags().String("date", "", "observation date (default: latest for the reference dataset)")
	rootCmd.AddCommand(indexCmd)
}
