package scoring

import (
	"math"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// CriterionSample is one criterion's raw value and scoring parameters at a
// single grid point. Value set to NaN marks the criterion absent there.
type CriterionSample struct {
	Value     float64
	Weight    float64
	Guideline float64
	Direction model.Direction
}

// Absent returns a sample that marks the criterion missing at this point.
func Absent(weight, guideline float64, dir model.Direction) CriterionSample {
	return CriterionSample{Value: math.NaN(), Weight: weight, Guideline: guideline, Direction: dir}
}

// Aggregate combines the present criteria into one weighted severity index.
// The sum is divided by the weight of criteria that actually contributed, so
// a point with 3 of 6 criteria is scored on the same scale as a point with
// all 6. When nothing is present the result is explicitly undefined
// (Defined=false), never zero.
func Aggregate(gridID int, date string, samples map[string]CriterionSample, bands model.Bands) model.CompositeResult {
	var sum, weightSum float64
	for _, s := range samples {
		sev, ok := Severity(s.Value, s.Guideline, s.Direction)
		if !ok {
			continue
		}
		sum += s.Weight * sev
		weightSum += s.Weight
	}

	result := model.CompositeResult{GridID: gridID, Date: date, WeightSum: weightSum}
	if weightSum <= 0 {
		result.Category = model.NoDataStatus
		return result
	}

	result.Score = sum / weightSum
	result.Category = bands.Label(result.Score)
	result.Defined = true
	return result
}
