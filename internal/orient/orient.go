// Package orient decides the coordinate order of user-supplied polygon
// vertices. Front-end map libraries disagree on (lon, lat) versus (lat, lon),
// so the engine resolves the order once per query instead of trusting the
// caller.
package orient

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/config"
	"github.com/zagros-analytics/suitability-cli/internal/geometry"
	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// ErrOrientationAmbiguous is returned when neither coordinate order is
// plausible for the configured region and the probe found no contained
// points either way.
var ErrOrientationAmbiguous = eris.New("orient: coordinate order could not be determined")

// Resolve determines whether raw vertex pairs are (lon, lat) or (lat, lon)
// and returns the ring in canonical lon/lat order. The magnitude of the
// vertex means against the region's plausibility bands picks an order to
// assume; whenever probe points are available the assumption is validated
// against them, and real data overrides the heuristic. Only an empty probe
// leaves the heuristic on its own.
func Resolve(raw [][]float64, probe []model.GridPoint, buffer float64, cfg config.OrientationConfig) (model.Orientation, *geometry.Ring, error) {
	ring, err := geometry.NewRing(raw)
	if err != nil {
		return model.OrientationLonLat, nil, err
	}

	assumed, decided := heuristic(raw, cfg)

	if len(probe) == 0 {
		if !decided {
			return model.OrientationLonLat, nil, eris.Wrap(ErrOrientationAmbiguous, "orient: both orders plausible and no probe data to test against")
		}
		return assumed, canonical(ring, assumed), nil
	}

	if decided {
		confirm := cfg.ProbeHits
		if confirm <= 0 {
			confirm = defaultProbeHits
		}
		if probeHits(canonical(ring, assumed), probe, buffer, cfg, confirm) > 0 {
			return assumed, canonical(ring, assumed), nil
		}
		alternate := flipped(assumed)
		if probeHits(canonical(ring, alternate), probe, buffer, cfg, confirm) > 0 {
			zap.L().Warn("orientation probe overrode the magnitude heuristic",
				zap.String("assumed", assumed.String()),
				zap.String("adopted", alternate.String()))
			return alternate, canonical(ring, alternate), nil
		}
		return model.OrientationLonLat, nil, eris.Wrap(ErrOrientationAmbiguous, "orient: probe found no contained points under either order")
	}

	// Both orders passed (or failed) the plausibility bands. Count contained
	// probe points under each order in full and keep the larger side.
	asLonLat := probeHits(ring, probe, buffer, cfg, 0)
	asLatLon := probeHits(ring.Swapped(), probe, buffer, cfg, 0)
	zap.L().Debug("orientation probe",
		zap.Int("hits_lon_lat", asLonLat),
		zap.Int("hits_lat_lon", asLatLon))

	switch {
	case asLonLat == 0 && asLatLon == 0:
		return model.OrientationLonLat, nil, eris.Wrap(ErrOrientationAmbiguous, "orient: probe found no contained points under either order")
	case asLatLon > asLonLat:
		return model.OrientationLatLon, ring.Swapped(), nil
	default:
		return model.OrientationLonLat, ring, nil
	}
}

const defaultProbeHits = 3

// canonical returns the ring in lon/lat order given the order its vertices
// were supplied in.
func canonical(ring *geometry.Ring, o model.Orientation) *geometry.Ring {
	if o == model.OrientationLatLon {
		return ring.Swapped()
	}
	return ring
}

func flipped(o model.Orientation) model.Orientation {
	if o == model.OrientationLonLat {
		return model.OrientationLatLon
	}
	return model.OrientationLonLat
}

// heuristic classifies the vertex means against the configured lat and lon
// plausibility bands. It decides only when exactly one order fits.
func heuristic(raw [][]float64, cfg config.OrientationConfig) (model.Orientation, bool) {
	var sumX, sumY float64
	for _, c := range raw {
		if len(c) < 2 {
			continue
		}
		sumX += c[0]
		sumY += c[1]
	}
	n := float64(len(raw))
	meanX, meanY := sumX/n, sumY/n

	lonLat := inBand(meanX, cfg.LonMin, cfg.LonMax) && inBand(meanY, cfg.LatMin, cfg.LatMax)
	latLon := inBand(meanX, cfg.LatMin, cfg.LatMax) && inBand(meanY, cfg.LonMin, cfg.LonMax)

	switch {
	case lonLat && !latLon:
		return model.OrientationLonLat, true
	case latLon && !lonLat:
		return model.OrientationLatLon, true
	default:
		return model.OrientationLonLat, false
	}
}

func inBand(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// probeHits counts contained probe points over four disjoint sections of the
// table, spaced a quarter apart, so a ring covering only one corner of the
// region still registers. A positive stopAt caps the scan once that many hits
// are found; zero counts the sections in full so two orders can be compared.
func probeHits(ring *geometry.Ring, probe []model.GridPoint, buffer float64, cfg config.OrientationConfig, stopAt int) int {
	section := cfg.ProbeSection
	if section <= 0 {
		section = 100
	}

	n := len(probe)
	hits := 0
	for offset := 0; offset < 4; offset++ {
		start := offset * n / 4
		end := start + section
		if end > n {
			end = n
		}
		if offset < 3 && end > (offset+1)*n/4 {
			end = (offset + 1) * n / 4 // keep sections disjoint on small tables
		}
		for i := start; i < end; i++ {
			if ring.ContainsBuffered(probe[i].Lon, probe[i].Lat, buffer) {
				hits++
				if stopAt > 0 && hits >= stopAt {
					return hits
				}
			}
		}
	}
	return hits
}
