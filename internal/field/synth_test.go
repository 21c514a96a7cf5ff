package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

func testGrid() []model.GridPoint {
	var points []model.GridPoint
	id := 0
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			points = append(points, model.GridPoint{
				ID:  id,
				Lat: 35.40 + 0.08*float64(i),
				Lon: 45.25 + 0.09*float64(j),
			})
			id++
		}
	}
	return points
}

func TestSynthesize_Deterministic(t *testing.T) {
	points := testGrid()
	sources := []Source{{Lat: 35.56, Lon: 45.43, Strength: 60, Radius: 0.05}}
	opts := SynthOptions{Background: 5, NoiseStd: 3, Seed: 42}

	a := Synthesize(points, sources, opts)
	b := Synthesize(points, sources, opts)
	assert.Equal(t, a, b)

	// A different seed perturbs the field.
	opts.Seed = 43
	c := Synthesize(points, sources, opts)
	assert.NotEqual(t, a, c)
}

func TestSynthesize_DecaysWithDistance(t *testing.T) {
	points := []model.GridPoint{
		{ID: 0, Lat: 35.56, Lon: 45.43}, // at the source
		{ID: 1, Lat: 35.60, Lon: 45.50}, // far away
	}
	sources := []Source{{Lat: 35.56, Lon: 45.43, Strength: 60, Radius: 0.05}}
	values := Synthesize(points, sources, SynthOptions{Background: 5})

	assert.InDelta(t, 65.0, values[0], 1e-9)
	assert.Greater(t, values[0], values[1])
	assert.GreaterOrEqual(t, values[1], 5.0)
}

func TestSynthesize_FloorsNearZero(t *testing.T) {
	points := testGrid()
	// A strongly negative noise draw cannot push values below 0.1*background.
	values := Synthesize(points, nil, SynthOptions{Background: 1, NoiseStd: 50, Seed: 7})
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.1)
	}
}

func TestSeasonalMultiplier(t *testing.T) {
	m, err := SeasonalMultiplier("2024-01-01", 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 1+0.3*math.Sin(2*math.Pi*1/365.25), m, 1e-12)

	_, err = SeasonalMultiplier("01/01/2024", 0.3)
	assert.Error(t, err)
}

func TestSynthesizeSeries_IndependentAxes(t *testing.T) {
	points := testGrid()
	sources := []Source{{Lat: 35.56, Lon: 45.43, Strength: 60, Radius: 0.05}}
	dates := []string{"2024-03-01", "2024-09-01"}

	series, err := SynthesizeSeries(points, sources, dates, 0.3, SynthOptions{Background: 5, Seed: 1})
	require.NoError(t, err)
	require.Len(t, series, 2)

	// With zero noise the two dates differ only by the seasonal multiplier.
	m1, err := SeasonalMultiplier(dates[0], 0.3)
	require.NoError(t, err)
	m2, err := SeasonalMultiplier(dates[1], 0.3)
	require.NoError(t, err)
	for i := range points {
		assert.InDelta(t, series[dates[0]][i]/m1, series[dates[1]][i]/m2, 1e-9)
	}
}

func TestInterpolateScattered_ExactHitAndFallback(t *testing.T) {
	points := []model.GridPoint{
		{ID: 0, Lat: 35.50, Lon: 45.30},
		{ID: 1, Lat: 35.70, Lon: 45.60}, // outside MaxRadius of all samples
	}
	samples := []Sample{
		{Lat: 35.50, Lon: 45.30, Value: 12},
		{Lat: 35.51, Lon: 45.31, Value: 20},
	}

	values, err := InterpolateScattered(points, samples, InterpOptions{MaxRadius: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 12.0, values[0])
	// Nearest-neighbor extrapolation outside coverage.
	assert.Equal(t, 20.0, values[1])
}

func TestInterpolateScattered_NeverNaN(t *testing.T) {
	points := testGrid()
	samples := []Sample{
		{Lat: 35.45, Lon: 45.30, Value: 10},
		{Lat: math.NaN(), Lon: 45.31, Value: 99},
		{Lat: 35.60, Lon: 45.50, Value: math.NaN()},
	}
	values, err := InterpolateScattered(points, samples, InterpOptions{})
	require.NoError(t, err)
	for _, v := range values {
		assert.False(t, math.IsNaN(v))
		assert.Equal(t, 10.0, v) // only one usable sample remains
	}
}

func TestInterpolateScattered_NoSamples(t *testing.T) {
	_, err := InterpolateScattered(testGrid(), nil, InterpOptions{})
	assert.Error(t, err)

	_, err = InterpolateScattered(testGrid(), []Sample{{Lat: 35.5, Lon: 45.3, Value: math.NaN()}}, InterpOptions{})
	assert.Error(t, err)
}

func TestInterpolateScattered_BetweenSamples(t *testing.T) {
	points := []model.GridPoint{{ID: 0, Lat: 35.50, Lon: 45.40}}
	samples := []Sample{
		{Lat: 35.50, Lon: 45.30, Value: 10},
		{Lat: 35.50, Lon: 45.50, Value: 30},
	}
	values, err := InterpolateScattered(points, samples, InterpOptions{})
	require.NoError(t, err)
	// Equidistant: the estimate is the mean.
	assert.InDelta(t, 20.0, values[0], 1e-9)
}
