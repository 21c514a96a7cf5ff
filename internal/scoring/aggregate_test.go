package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

func TestAggregate_WeightedMean(t *testing.T) {
	samples := map[string]CriterionSample{
		"no2": {Value: 20, Weight: 0.25, Guideline: 40, Direction: model.LowerIsBetter}, // severity 50
		"so2": {Value: 20, Weight: 0.20, Guideline: 20, Direction: model.LowerIsBetter}, // severity 100
	}
	result := Aggregate(7, "2024-06-01", samples, model.DefaultIndexBands())

	require.True(t, result.Defined)
	assert.Equal(t, 7, result.GridID)
	assert.Equal(t, "2024-06-01", result.Date)
	assert.InDelta(t, 0.45, result.WeightSum, 1e-12)
	assert.InDelta(t, (0.25*50+0.20*100)/0.45, result.Score, 1e-9)
	assert.Equal(t, "Poor", result.Category)
}

func TestAggregate_MissingCriteriaDropFromDenominator(t *testing.T) {
	present := map[string]CriterionSample{
		"a": {Value: 10, Weight: 1, Guideline: 40, Direction: model.LowerIsBetter},
		"b": {Value: 30, Weight: 1, Guideline: 40, Direction: model.LowerIsBetter},
	}
	withAbsent := map[string]CriterionSample{
		"a": present["a"],
		"b": present["b"],
		"c": Absent(1, 40, model.LowerIsBetter),
		"d": Absent(1, 40, model.LowerIsBetter),
	}

	got := Aggregate(0, "2024-06-01", withAbsent, model.DefaultIndexBands())
	want := Aggregate(0, "2024-06-01", present, model.DefaultIndexBands())

	require.True(t, got.Defined)
	assert.InDelta(t, want.Score, got.Score, 1e-12)
	assert.Equal(t, want.WeightSum, got.WeightSum)
	assert.Equal(t, want.Category, got.Category)
}

func TestAggregate_AllAbsentIsUndefined(t *testing.T) {
	samples := map[string]CriterionSample{
		"a": Absent(0.5, 40, model.LowerIsBetter),
		"b": Absent(0.5, 20, model.HigherIsBetter),
	}
	result := Aggregate(3, "2024-06-01", samples, model.DefaultIndexBands())

	assert.False(t, result.Defined)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.0, result.WeightSum)
	assert.Equal(t, model.NoDataStatus, result.Category)
}

func TestAggregate_CategoryBoundaries(t *testing.T) {
	bands := model.DefaultIndexBands()
	cases := []struct {
		value float64 // against guideline 100, lower is better => severity == value
		want  string
	}{
		{10, "Excellent"},
		{20, "Excellent"},
		{20.1, "Good"},
		{60, "Moderate"},
		{80, "Poor"},
		{100, "Very Poor"},
	}
	for _, tc := range cases {
		samples := map[string]CriterionSample{
			"x": {Value: tc.value, Weight: 1, Guideline: 100, Direction: model.LowerIsBetter},
		}
		result := Aggregate(0, "2024-06-01", samples, bands)
		assert.Equal(t, tc.want, result.Category, "severity %.1f", tc.value)
	}
}

func TestBandsOverflow(t *testing.T) {
	bands := model.DefaultIndexBands()
	assert.Equal(t, "Extremely Poor", bands.Label(101))
	assert.Equal(t, len(bands.Steps), bands.Index(101))
}
