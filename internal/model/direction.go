package model

import "github.com/rotisserie/eris"

// Direction states which way a raw measurement is "good" relative to its
// guideline value.
type Direction int

const (
	// LowerIsBetter marks criteria where exceeding the guideline is harmful,
	// e.g. pollutant concentrations.
	LowerIsBetter Direction = iota
	// HigherIsBetter marks criteria where the guideline is a target to reach,
	// e.g. total ozone column or nighttime light intensity.
	HigherIsBetter
)

func (d Direction) String() string {
	if d == HigherIsBetter {
		return "higher_is_better"
	}
	return "lower_is_better"
}

// ParseDirection parses the config spelling of a direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "lower_is_better", "lower":
		return LowerIsBetter, nil
	case "higher_is_better", "higher":
		return HigherIsBetter, nil
	default:
		return LowerIsBetter, eris.Errorf("model: unknown direction %q", s)
	}
}

// Orientation is the axis order of an externally supplied coordinate pair.
type Orientation int

const (
	// OrientationLonLat is (longitude, latitude), the GeoJSON convention.
	OrientationLonLat Orientation = iota
	// OrientationLatLon is (latitude, longitude), the Leaflet convention.
	OrientationLatLon
)

func (o Orientation) String() string {
	if o == OrientationLatLon {
		return "lat_lon"
	}
	return "lon_lat"
}
