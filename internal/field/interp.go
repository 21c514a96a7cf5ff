package field

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// Sample is one scattered measurement to interpolate from.
type Sample struct {
	Lat   float64
	Lon   float64
	Value float64
}

// InterpOptions tunes InterpolateScattered.
type InterpOptions struct {
	// Power is the inverse-distance exponent; 0 means the default of 2.
	Power float64
	// MaxRadius limits which samples influence a grid point, in degrees.
	// Points with no sample in range fall back to the nearest sample's
	// value. 0 means unlimited.
	MaxRadius float64
}

// InterpolateScattered estimates a value at every grid point from scattered
// samples using inverse-distance weighting. A grid point coincident with a
// sample takes that sample's value exactly. The result never contains NaN:
// any point the weighting cannot serve takes the nearest sample's value.
func InterpolateScattered(points []model.GridPoint, samples []Sample, opts InterpOptions) ([]float64, error) {
	clean := samples[:0:0]
	for _, s := range samples {
		if math.IsNaN(s.Value) || math.IsNaN(s.Lat) || math.IsNaN(s.Lon) {
			continue
		}
		clean = append(clean, s)
	}
	if len(clean) == 0 {
		return nil, eris.New("field: no usable samples to interpolate from")
	}

	power := opts.Power
	if power == 0 {
		power = 2
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = idwAt(p.Lat, p.Lon, clean, power, opts.MaxRadius)
	}
	return values, nil
}

func idwAt(lat, lon float64, samples []Sample, power, maxRadius float64) float64 {
	const exactHit = 1e-12

	var weightSum, valueSum float64
	nearest := samples[0]
	nearestDist := math.Inf(1)

	for _, s := range samples {
		d := math.Hypot(lat-s.Lat, lon-s.Lon)
		if d < exactHit {
			return s.Value
		}
		if d < nearestDist {
			nearestDist = d
			nearest = s
		}
		if maxRadius > 0 && d > maxRadius {
			continue
		}
		w := 1 / math.Pow(d, power)
		weightSum += w
		valueSum += w * s.Value
	}

	// Outside the influence radius of every sample: nearest-neighbor
	// extrapolation keeps the surface defined everywhere.
	if weightSum == 0 || math.IsNaN(valueSum/weightSum) {
		return nearest.Value
	}
	return valueSum / weightSum
}
