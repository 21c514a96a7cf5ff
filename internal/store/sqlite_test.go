package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_GridRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	points := []model.GridPoint{
		{ID: 0, Lat: 35.50, Lon: 45.40},
		{ID: 1, Lat: 35.50, Lon: 45.41},
		{ID: 2, Lat: 35.51, Lon: 45.40},
	}
	require.NoError(t, s.SaveGridPoints(ctx, points))

	got, err := s.GridPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, points, got)

	// Saving again replaces, not appends.
	require.NoError(t, s.SaveGridPoints(ctx, points[:2]))
	got, err = s.GridPoints(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLite_MeasurementsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []model.Measurement{
		{Date: "2024-05-01", GridID: 0, Lat: 35.50, Lon: 45.40, Value: 10, Units: "µg/m³"},
		{Date: "2024-06-01", GridID: 0, Lat: 35.50, Lon: 45.40, Value: 12, Units: "µg/m³"},
		{Date: "2024-06-01", GridID: 1, Lat: 35.50, Lon: 45.41, Value: 14, Units: "µg/m³"},
	}
	require.NoError(t, s.SaveMeasurements(ctx, "no2", rows))

	got, err := s.Measurements(ctx, "no2", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 12.0, got[0].Value)

	// Re-import with a corrected value overwrites in place.
	require.NoError(t, s.SaveMeasurements(ctx, "no2", []model.Measurement{
		{Date: "2024-06-01", GridID: 0, Lat: 35.50, Lon: 45.40, Value: 99, Units: "µg/m³"},
	}))
	got, err = s.Measurements(ctx, "no2", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 99.0, got[0].Value)

	latest, err := s.LatestDate(ctx, "no2")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", latest)

	dates, err := s.Dates(ctx, "no2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01", "2024-06-01"}, dates)

	criteria, err := s.Criteria(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"no2"}, criteria)
}

func TestSQLite_EmptyLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestDate(ctx, "no2")
	require.NoError(t, err)
	assert.Equal(t, "", latest)

	rows, err := s.Measurements(ctx, "no2", "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, rows)

	latest, err = s.LatestCompositeDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", latest)
}

func TestSQLite_CompositeSkipsUndefined(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results := []model.CompositeResult{
		{GridID: 0, Date: "2024-06-01", Score: 35.5, Category: "Good", WeightSum: 1.0, Defined: true},
		{GridID: 1, Date: "2024-06-01", Category: model.NoDataStatus, Defined: false},
		{GridID: 2, Date: "2024-06-01", Score: 72.0, Category: "Poor", WeightSum: 0.85, Defined: true},
	}
	require.NoError(t, s.SaveComposite(ctx, results))

	got, err := s.Composite(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].GridID)
	assert.Equal(t, 2, got[1].GridID)
	assert.True(t, got[0].Defined)

	latest, err := s.LatestCompositeDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", latest)
}

func TestSQLite_BoundaryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blob := []byte{0x01, 0x03, 0x00, 0x00, 0x20, 0xe6, 0x10, 0x00, 0x00}
	require.NoError(t, s.SaveBoundary(ctx, "city", blob))

	got, err := s.Boundary(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	// Overwrite under the same name.
	require.NoError(t, s.SaveBoundary(ctx, "city", []byte{0xff}))
	got, err = s.Boundary(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, got)

	_, err = s.Boundary(ctx, "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_RecordRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, "synth", "no2 12 dates")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	id2, err := s.RecordRun(ctx, "import", "no2.csv")
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}
