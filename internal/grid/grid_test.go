package grid

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

func sulaimaniBounds() model.Bounds {
	return model.Bounds{MinLat: 35.40, MinLon: 45.25, MaxLat: 35.72, MaxLon: 45.62}
}

func TestGenerate_RowMajorIDs(t *testing.T) {
	points, err := Generate(sulaimaniBounds(), 40, 40)
	require.NoError(t, err)
	require.Len(t, points, 1600)

	for i, p := range points {
		assert.Equal(t, i, p.ID)
	}

	// Corner points.
	assert.Equal(t, 35.40, points[0].Lat)
	assert.Equal(t, 45.25, points[0].Lon)
	assert.InDelta(t, 35.72, points[1599].Lat, 1e-9)
	assert.InDelta(t, 45.62, points[1599].Lon, 1e-9)

	// Row-major: the second point advances longitude, not latitude.
	assert.Equal(t, points[0].Lat, points[1].Lat)
	assert.Greater(t, points[1].Lon, points[0].Lon)
	// First point of the second row advances latitude.
	assert.Greater(t, points[40].Lat, points[0].Lat)
	assert.Equal(t, points[0].Lon, points[40].Lon)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(sulaimaniBounds(), 12, 9)
	require.NoError(t, err)
	b, err := Generate(sulaimaniBounds(), 12, 9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_InvalidBounds(t *testing.T) {
	cases := []struct {
		name   string
		bounds model.Bounds
	}{
		{"lat inverted", model.Bounds{MinLat: 36, MinLon: 45, MaxLat: 35, MaxLon: 46}},
		{"lon inverted", model.Bounds{MinLat: 35, MinLon: 46, MaxLat: 36, MaxLon: 45}},
		{"lat empty", model.Bounds{MinLat: 35, MinLon: 45, MaxLat: 35, MaxLon: 46}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(tc.bounds, 10, 10)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidBounds))
		})
	}
}

func TestGenerate_ResolutionTooSmall(t *testing.T) {
	_, err := Generate(sulaimaniBounds(), 1, 10)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidBounds))
}

func TestSpacing(t *testing.T) {
	latKM, lonKM := Spacing(model.Bounds{MinLat: 35, MinLon: 45, MaxLat: 36, MaxLon: 46}, 112, 112)
	assert.InDelta(t, 1.0, latKM, 1e-9)
	assert.InDelta(t, 1.0, lonKM, 1e-9)
}
