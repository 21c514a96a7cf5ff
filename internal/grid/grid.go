// Package grid builds the regular lattice of sample locations shared by
// every criterion in an analysis run.
package grid

import (
	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// ErrInvalidBounds is returned for a degenerate bounding box or resolution.
var ErrInvalidBounds = eris.New("grid: invalid bounds")

// DegreesPerKM is an approximate conversion factor for latitude degrees to
// kilometers. At mid-latitudes, 1 degree of latitude is approximately 111 km.
const DegreesPerKM = 1.0 / 111.0

// Generate produces an nLat x nLon lattice of evenly spaced points covering
// bounds, both endpoints inclusive on each axis. IDs are assigned in
// row-major order (id = i*nLon + j, latitude index outermost), so the output
// is deterministic: the same bounds and resolution always yield the same
// sequence. The function is pure; callers persist the result if they want to
// reuse it across criteria.
func Generate(bounds model.Bounds, nLat, nLon int) ([]model.GridPoint, error) {
	if !bounds.Valid() {
		return nil, eris.Wrapf(ErrInvalidBounds,
			"min (%f, %f) must be south-west of max (%f, %f)",
			bounds.MinLat, bounds.MinLon, bounds.MaxLat, bounds.MaxLon)
	}
	if nLat < 2 || nLon < 2 {
		return nil, eris.Wrapf(ErrInvalidBounds, "resolution %dx%d too small", nLat, nLon)
	}

	latStep := (bounds.MaxLat - bounds.MinLat) / float64(nLat-1)
	lonStep := (bounds.MaxLon - bounds.MinLon) / float64(nLon-1)

	points := make([]model.GridPoint, 0, nLat*nLon)
	for i := 0; i < nLat; i++ {
		lat := bounds.MinLat + float64(i)*latStep
		for j := 0; j < nLon; j++ {
			points = append(points, model.GridPoint{
				ID:  i*nLon + j,
				Lat: lat,
				Lon: bounds.MinLon + float64(j)*lonStep,
			})
		}
	}
	return points, nil
}

// Spacing returns the approximate point spacing in kilometers for a grid
// over bounds, useful for logging grid summaries.
func Spacing(bounds model.Bounds, nLat, nLon int) (latKM, lonKM float64) {
	if nLat < 2 || nLon < 2 {
		return 0, 0
	}
	latKM = (bounds.MaxLat - bounds.MinLat) / float64(nLat-1) / DegreesPerKM
	lonKM = (bounds.MaxLon - bounds.MinLon) / float64(nLon-1) / DegreesPerKM
	return latKM, lonKM
}
