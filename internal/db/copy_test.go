package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

func TestCopyInto(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	columns := []string{"id", "lat", "lon"}
	mock.ExpectCopyFrom(pgx.Identifier{"grid_points"}, columns).WillReturnResult(2)

	n, err := CopyInto(context.Background(), mock, "grid_points", columns, [][]any{
		{0, 35.50, 45.40},
		{1, 35.50, 45.41},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInto_EmptySkipsRoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := CopyInto(context.Background(), mock, "grid_points", []string{"id"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMeasurements(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE _tmp_measurements").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_measurements"}, measurementColumns).
		WillReturnResult(2)
	mock.ExpectExec("INSERT INTO measurements").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	rows := []model.Measurement{
		{Date: "2024-06-01", GridID: 0, Lat: 35.50, Lon: 45.40, Value: 12.5, Units: "µg/m³"},
		{Date: "2024-06-01", GridID: 1, Lat: 35.50, Lon: 45.41, Value: 14.0, Units: "µg/m³"},
	}
	n, err := UpsertMeasurements(context.Background(), mock, "no2", rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMeasurements_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := UpsertMeasurements(context.Background(), mock, "no2", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
