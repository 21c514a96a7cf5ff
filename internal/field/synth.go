// Package field turns point emission sources or scattered measurements into
// continuous surfaces sampled on the shared grid.
package field

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// Source is one point emitter contributing a Gaussian-decay plume.
type Source struct {
	Lat      float64
	Lon      float64
	Strength float64
	Radius   float64
}

// SynthOptions tunes Synthesize. Seed is applied on every call so the same
// inputs always produce the same field; reproducibility is part of the
// contract, not an afterthought.
type SynthOptions struct {
	Background float64
	NoiseStd   float64
	Seed       uint64
}

// Synthesize produces one value per grid point, in input order: the sum of
// Gaussian-decay contributions strength*exp(-(d/radius)^2) over all sources,
// plus the background level and seeded N(0, noise) jitter. Values are floored
// at a tenth of the background so the field never goes non-physically low.
func Synthesize(points []model.GridPoint, sources []Source, opts SynthOptions) []float64 {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	floor := 0.1 * opts.Background

	values := make([]float64, len(points))
	for i, p := range points {
		total := opts.Background
		for _, s := range sources {
			if s.Radius <= 0 {
				continue
			}
			d := math.Hypot(p.Lat-s.Lat, p.Lon-s.Lon)
			total += s.Strength * math.Exp(-(d/s.Radius)*(d/s.Radius))
		}
		if opts.NoiseStd > 0 {
			total += rng.NormFloat64() * opts.NoiseStd
		}
		if total < floor {
			total = floor
		}
		values[i] = total
	}
	return values
}

// SeasonalMultiplier is the deterministic temporal factor applied to a daily
// field: 1 + amplitude*sin(2*pi*dayOfYear/365.25). Spatial pattern and
// temporal trend stay independently controllable.
func SeasonalMultiplier(date string, amplitude float64) (float64, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, eris.Wrapf(err, "field: parse date %q", date)
	}
	return 1 + amplitude*math.Sin(2*math.Pi*float64(t.YearDay())/365.25), nil
}

// SynthesizeSeries produces a date-indexed series of fields. Each date gets
// its own derived seed so a single date can be regenerated without replaying
// the whole series.
func SynthesizeSeries(points []model.GridPoint, sources []Source, dates []string, amplitude float64, opts SynthOptions) (map[string][]float64, error) {
	series := make(map[string][]float64, len(dates))
	for i, date := range dates {
		mult, err := SeasonalMultiplier(date, amplitude)
		if err != nil {
			return nil, err
		}

		dayOpts := opts
		dayOpts.Seed = opts.Seed + uint64(i)*1_000_003
		values := Synthesize(points, sources, dayOpts)
		for j := range values {
			values[j] *= mult
		}
		series[date] = values
	}
	return series, nil
}
