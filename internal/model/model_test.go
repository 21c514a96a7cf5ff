package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandsLabelBoundaries(t *testing.T) {
	bands := DefaultIndexBands()

	cases := []struct {
		score float64
		want  string
	}{
		{0, "Excellent"},
		{20, "Excellent"}, // boundary belongs to the lower band
		{20.000001, "Good"},
		{40, "Good"},
		{60, "Moderate"},
		{80, "Poor"},
		{100, "Very Poor"},
		{100.5, "Extremely Poor"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, bands.Label(tc.score), "score %v", tc.score)
	}
}

func TestBandsIndex(t *testing.T) {
	bands := DefaultStatusBands()
	assert.Equal(t, 0, bands.Index(15))
	assert.Equal(t, 3, bands.Index(80))
	assert.Equal(t, 4, bands.Index(81)) // overflow band
	assert.Equal(t, "Poor", bands.Label(81))
}

func TestStatusBandsComplementLookup(t *testing.T) {
	bands := DefaultStatusBands()
	// A suitability score s is labelled at 100-s, so high suitability lands
	// in the first band.
	assert.Equal(t, "Excellent", bands.Label(100-95))
	assert.Equal(t, "Good", bands.Label(100-70))
	assert.Equal(t, "Poor", bands.Label(100-10))
}

func TestBoundsValid(t *testing.T) {
	assert.True(t, Bounds{MinLat: 35.4, MinLon: 45.1, MaxLat: 35.7, MaxLon: 45.5}.Valid())
	assert.False(t, Bounds{MinLat: 35.7, MinLon: 45.1, MaxLat: 35.4, MaxLon: 45.5}.Valid())
	assert.False(t, Bounds{MinLat: 35.4, MinLon: 45.5, MaxLat: 35.7, MaxLon: 45.5}.Valid())
	assert.False(t, Bounds{}.Valid())
}

func TestMeasurementTable(t *testing.T) {
	var table MeasurementTable
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "", table.LatestDate())
	assert.Empty(t, table.Dates())

	table.Append(
		Measurement{Date: "2024-06-01", GridID: 0, Value: 1},
		Measurement{Date: "2024-05-01", GridID: 0, Value: 2},
		Measurement{Date: "2024-06-01", GridID: 1, Value: 3},
	)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "2024-06-01", table.LatestDate())
	assert.Equal(t, []string{"2024-06-01", "2024-05-01"}, table.Dates())

	var nilTable *MeasurementTable
	assert.Equal(t, 0, nilTable.Len())
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"lower_is_better", "lower"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, LowerIsBetter, d)
	}
	for _, s := range []string{"higher_is_better", "higher"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, HigherIsBetter, d)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestOrientationString(t *testing.T) {
	assert.Equal(t, "lon_lat", OrientationLonLat.String())
	assert.Equal(t, "lat_lon", OrientationLatLon.String())
}
