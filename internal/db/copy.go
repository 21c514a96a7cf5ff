package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// CopyInto bulk-inserts rows into a table using the PostgreSQL COPY protocol.
func CopyInto(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// measurementColumns is the column order used by UpsertMeasurements. It must
// match the measurements table definition.
var measurementColumns = []string{"criterion", "date", "grid_id", "lat", "lon", "value", "units"}

// UpsertMeasurements bulk-loads measurement rows for one criterion, replacing
// any existing rows with the same (criterion, date, grid_id). COPY into a
// temp table first, then one INSERT ... ON CONFLICT, so re-imports are
// idempotent without per-row round trips.
func UpsertMeasurements(ctx context.Context, pool Pool, criterion string, rows []model.Measurement) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert measurements: begin tx")
	}
	defer tx.Rollback(ctx)

	const tempTable = "_tmp_measurements"
	createSQL := "CREATE TEMP TABLE " + tempTable + " (LIKE measurements INCLUDING DEFAULTS) ON COMMIT DROP"
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrap(err, "db: upsert measurements: create temp table")
	}

	copyRows := make([][]any, len(rows))
	for i, r := range rows {
		copyRows[i] = []any{criterion, r.Date, r.GridID, r.Lat, r.Lon, r.Value, r.Units}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tempTable}, measurementColumns, pgx.CopyFromRows(copyRows)); err != nil {
		return 0, eris.Wrap(err, "db: upsert measurements: COPY into temp table")
	}

	const upsertSQL = `INSERT INTO measurements (criterion, date, grid_id, lat, lon, value, units)
		SELECT criterion, date, grid_id, lat, lon, value, units FROM _tmp_measurements
		ON CONFLICT (criterion, date, grid_id) DO UPDATE SET
		  lat = EXCLUDED.lat, lon = EXCLUDED.lon, value = EXCLUDED.value, units = EXCLUDED.units`
	tag, err := tx.Exec(ctx, upsertSQL)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert measurements: insert from temp table")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert measurements: commit tx")
	}
	return tag.RowsAffected(), nil
}
