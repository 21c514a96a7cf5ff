// Package areaquery answers user-drawn polygon queries: which measurement
// points fall inside the area, how suitable the area is per criterion and
// overall, and what should be done about it.
package areaquery

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zagros-analytics/suitability-cli/internal/config"
	"github.com/zagros-analytics/suitability-cli/internal/geometry"
	"github.com/zagros-analytics/suitability-cli/internal/model"
	"github.com/zagros-analytics/suitability-cli/internal/orient"
	"github.com/zagros-analytics/suitability-cli/internal/recommend"
	"github.com/zagros-analytics/suitability-cli/internal/scoring"
)

// Source provides measurement rows to the engine. The store implements it;
// tests use in-memory fakes.
type Source interface {
	// Measurements returns all rows for a criterion at a date.
	Measurements(ctx context.Context, criterion, date string) ([]model.Measurement, error)
	// LatestDate returns the most recent date with rows for a criterion, or
	// the empty string when the criterion has no rows at all.
	LatestDate(ctx context.Context, criterion string) (string, error)
}

// Params describes one polygon query.
type Params struct {
	// Coordinates are the polygon vertices in whatever ordinate order the
	// caller's map library produced; the engine resolves the order itself.
	Coordinates [][]float64
	// BufferDeg overrides the configured containment buffer when positive.
	BufferDeg float64
	// Date restricts the query to one observation date. Empty means the
	// latest available date per criterion.
	Date string
	// Datasets restricts the query to a subset of criteria. Empty means all.
	Datasets []string
}

// Engine evaluates area queries against a measurement source.
type Engine struct {
	src     Source
	cfg     *config.Config
	catalog *recommend.Catalog
}

// New builds an engine. A nil catalog falls back to the built-in one.
func New(src Source, cfg *config.Config, catalog *recommend.Catalog) *Engine {
	if catalog == nil {
		catalog = recommend.Default()
	}
	return &Engine{src: src, cfg: cfg, catalog: catalog}
}

type criterionResult struct {
	name    string
	summary model.CriterionSummary
	suit    float64
	present bool
}

// Query resolves the polygon's coordinate order, scans every selected
// criterion in parallel, and folds the per-criterion summaries into one
// area verdict. Criteria with no contained points are reported as No Data
// and excluded from the overall score.
func (e *Engine) Query(ctx context.Context, p Params) (model.AreaResult, error) {
	criteria, err := e.selectCriteria(p.Datasets)
	if err != nil {
		return model.AreaResult{}, err
	}

	buffer := p.BufferDeg
	if buffer <= 0 {
		buffer = e.cfg.Query.BufferDegrees
	}

	probe, err := e.referenceProbe(ctx, p.Date)
	if err != nil {
		return model.AreaResult{}, err
	}
	orientation, ring, err := orient.Resolve(p.Coordinates, probe, buffer, e.cfg.Orientation)
	if err != nil {
		return model.AreaResult{}, err
	}
	zap.L().Debug("area query",
		zap.String("orientation", orientation.String()),
		zap.Float64("buffer_deg", buffer),
		zap.Int("criteria", len(criteria)))

	results := make([]criterionResult, len(criteria))
	g, gctx := errgroup.WithContext(ctx)
	for i, crit := range criteria {
		g.Go(func() error {
			r, err := e.scanCriterion(gctx, crit, ring, buffer, p.Date)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.AreaResult{}, err
	}

	return e.fold(results, ring, orientation), nil
}

// QueryCircle runs a query over a circular area given as center and radius
// in degrees. Center ordinates go through the same orientation resolution as
// polygon vertices.
func (e *Engine) QueryCircle(ctx context.Context, centerA, centerB, radiusDeg float64, p Params) (model.AreaResult, error) {
	ring := geometry.CircleRing(centerA, centerB, radiusDeg)
	p.Coordinates = ring.Vertices()
	return e.Query(ctx, p)
}

func (e *Engine) selectCriteria(datasets []string) ([]config.CriterionConfig, error) {
	if len(datasets) == 0 {
		return e.cfg.Criteria, nil
	}
	out := make([]config.CriterionConfig, 0, len(datasets))
	for _, name := range datasets {
		crit := e.cfg.Criterion(name)
		if crit == nil {
			return nil, eris.Errorf("areaquery: unknown dataset %q", name)
		}
		out = append(out, *crit)
	}
	return out, nil
}

// referenceProbe loads the reference dataset's rows as grid points for
// orientation probing. A missing reference dataset degrades to an empty
// probe, which leaves only the magnitude heuristic.
func (e *Engine) referenceProbe(ctx context.Context, date string) ([]model.GridPoint, error) {
	name := e.cfg.Query.ReferenceDataset
	if name == "" {
		return nil, nil
	}
	if date == "" {
		latest, err := e.src.LatestDate(ctx, name)
		if err != nil {
			return nil, eris.Wrapf(err, "areaquery: latest date for %s", name)
		}
		if latest == "" {
			return nil, nil
		}
		date = latest
	}
	rows, err := e.src.Measurements(ctx, name, date)
	if err != nil {
		return nil, eris.Wrapf(err, "areaquery: load reference dataset %s", name)
	}
	probe := make([]model.GridPoint, len(rows))
	for i, r := range rows {
		probe[i] = model.GridPoint{ID: r.GridID, Lat: r.Lat, Lon: r.Lon}
	}
	return probe, nil
}

func (e *Engine) scanCriterion(ctx context.Context, crit config.CriterionConfig, ring *geometry.Ring, buffer float64, date string) (criterionResult, error) {
	result := criterionResult{
		name:    crit.Name,
		summary: model.CriterionSummary{Status: model.NoDataStatus, NoData: true, Units: crit.Units},
	}

	if date == "" {
		latest, err := e.src.LatestDate(ctx, crit.Name)
		if err != nil {
			return result, eris.Wrapf(err, "areaquery: latest date for %s", crit.Name)
		}
		if latest == "" {
			return result, nil
		}
		date = latest
	}
	rows, err := e.src.Measurements(ctx, crit.Name, date)
	if err != nil {
		return result, eris.Wrapf(err, "areaquery: load %s", crit.Name)
	}

	var sum float64
	var count int
	for _, r := range rows {
		if ring.ContainsBuffered(r.Lon, r.Lat, buffer) {
			sum += r.Value
			count++
		}
	}
	if count == 0 {
		return result, nil
	}

	dir, err := crit.ParsedDirection()
	if err != nil {
		return result, eris.Wrapf(err, "areaquery: criterion %s", crit.Name)
	}
	mean := sum / float64(count)
	suit, ok := scoring.Suitability(mean, crit.Guideline, dir)
	if !ok {
		return result, nil
	}

	status := e.cfg.Bands.Status.Label(100 - suit)
	result.summary = model.CriterionSummary{
		Score:           suit,
		Status:          status,
		MeanValue:       mean,
		Units:           crit.Units,
		PointCount:      count,
		Recommendations: e.catalog.For(crit.Name, status),
	}
	result.suit = suit
	result.present = true
	return result, nil
}

func (e *Engine) fold(results []criterionResult, ring *geometry.Ring, orientation model.Orientation) model.AreaResult {
	out := model.AreaResult{
		PerCriterion: make(map[string]model.CriterionSummary, len(results)),
		AreaKM2:      ring.AreaKM2(),
		Orientation:  orientation.String(),
	}

	var suitSum float64
	var present int
	var actions []string
	for _, r := range results {
		out.PerCriterion[r.name] = r.summary
		if r.summary.PointCount > out.PointCount {
			out.PointCount = r.summary.PointCount
		}
		if !r.present {
			continue
		}
		present++
		suitSum += r.suit
		actions = append(actions, r.summary.Recommendations...)
	}

	if present == 0 {
		out.OverallStatus = model.InsufficientDataStatus
		return out
	}

	out.OverallScore = suitSum / float64(present)
	out.OverallStatus = e.cfg.Bands.Status.Label(100 - out.OverallScore)
	actions = append(actions, e.catalog.GeneralFor(out.OverallStatus)...)
	out.Priority, out.General = recommend.Partition(actions)
	return out
}
