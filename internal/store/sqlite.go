package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS grid_points (
	id  INTEGER PRIMARY KEY,
	lat REAL NOT NULL,
	lon REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS measurements (
	criterion TEXT    NOT NULL,
	date      TEXT    NOT NULL,
	grid_id   INTEGER NOT NULL,
	lat       REAL    NOT NULL,
	lon       REAL    NOT NULL,
	value     REAL    NOT NULL,
	units     TEXT,
	PRIMARY KEY (criterion, date, grid_id)
);

CREATE TABLE IF NOT EXISTS composite_results (
	date       TEXT    NOT NULL,
	grid_id    INTEGER NOT NULL,
	score      REAL    NOT NULL,
	category   TEXT    NOT NULL,
	weight_sum REAL    NOT NULL,
	PRIMARY KEY (date, grid_id)
);

CREATE TABLE IF NOT EXISTS boundaries (
	name       TEXT PRIMARY KEY,
	geom       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	detail     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_measurements_criterion_date ON measurements(criterion, date);
CREATE INDEX IF NOT EXISTS idx_composite_date ON composite_results(date);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveGridPoints(ctx context.Context, points []model.GridPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save grid")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grid_points`); err != nil {
		return eris.Wrap(err, "sqlite: clear grid points")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO grid_points (id, lat, lon) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare grid insert")
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Lat, p.Lon); err != nil {
			return eris.Wrapf(err, "sqlite: insert grid point %d", p.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit grid points")
}

func (s *SQLiteStore) GridPoints(ctx context.Context) ([]model.GridPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, lat, lon FROM grid_points ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list grid points")
	}
	defer rows.Close()

	var points []model.GridPoint
	for rows.Next() {
		var p model.GridPoint
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lon); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan grid point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: grid points iterate")
}

func (s *SQLiteStore) SaveMeasurements(ctx context.Context, criterion string, rows []model.Measurement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save measurements")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (criterion, date, grid_id, lat, lon, value, units)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (criterion, date, grid_id) DO UPDATE SET
		   lat = excluded.lat, lon = excluded.lon, value = excluded.value, units = excluded.units`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare measurement upsert")
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, criterion, r.Date, r.GridID, r.Lat, r.Lon, r.Value, r.Units); err != nil {
			return eris.Wrapf(err, "sqlite: upsert measurement %s/%s/%d", criterion, r.Date, r.GridID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit measurements")
}

func (s *SQLiteStore) Measurements(ctx context.Context, criterion, date string) ([]model.Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, grid_id, lat, lon, value, COALESCE(units, '')
		 FROM measurements WHERE criterion = ? AND date = ? ORDER BY grid_id`,
		criterion, date)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list measurements %s", criterion)
	}
	defer rows.Close()

	var out []model.Measurement
	for rows.Next() {
		var m model.Measurement
		if err := rows.Scan(&m.Date, &m.GridID, &m.Lat, &m.Lon, &m.Value, &m.Units); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan measurement")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: measurements iterate")
}

func (s *SQLiteStore) LatestDate(ctx context.Context, criterion string) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM measurements WHERE criterion = ?`, criterion).Scan(&date)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: latest date %s", criterion)
	}
	return date.String, nil
}

func (s *SQLiteStore) Dates(ctx context.Context, criterion string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM measurements WHERE criterion = ? ORDER BY date`, criterion)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: dates %s", criterion)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan date")
		}
		dates = append(dates, d)
	}
	return dates, eris.Wrap(rows.Err(), "sqlite: dates iterate")
}

func (s *SQLiteStore) Criteria(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT criterion FROM measurements ORDER BY criterion`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list criteria")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan criterion")
		}
		names = append(names, n)
	}
	return names, eris.Wrap(rows.Err(), "sqlite: criteria iterate")
}

func (s *SQLiteStore) SaveComposite(ctx context.Context, results []model.CompositeResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save composite")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO composite_results (date, grid_id, score, category, weight_sum)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (date, grid_id) DO UPDATE SET
		   score = excluded.score, category = excluded.category, weight_sum = excluded.weight_sum`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare composite upsert")
	}
	defer stmt.Close()

	for _, r := range results {
		if !r.Defined {
			continue // undefined points are absent, not zero
		}
		if _, err := stmt.ExecContext(ctx, r.Date, r.GridID, r.Score, r.Category, r.WeightSum); err != nil {
			return eris.Wrapf(err, "sqlite: upsert composite %s/%d", r.Date, r.GridID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit composite")
}

func (s *SQLiteStore) Composite(ctx context.Context, date string) ([]model.CompositeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, grid_id, score, category, weight_sum
		 FROM composite_results WHERE date = ? ORDER BY grid_id`, date)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list composite %s", date)
	}
	defer rows.Close()

	var out []model.CompositeResult
	for rows.Next() {
		r := model.CompositeResult{Defined: true}
		if err := rows.Scan(&r.Date, &r.GridID, &r.Score, &r.Category, &r.WeightSum); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan composite")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: composite iterate")
}

func (s *SQLiteStore) LatestCompositeDate(ctx context.Context) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM composite_results`).Scan(&date)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: latest composite date")
	}
	return date.String, nil
}

func (s *SQLiteStore) SaveBoundary(ctx context.Context, name string, ewkb []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boundaries (name, geom, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET geom = excluded.geom, updated_at = excluded.updated_at`,
		name, ewkb, time.Now().UTC())
	return eris.Wrapf(err, "sqlite: save boundary %s", name)
}

func (s *SQLiteStore) Boundary(ctx context.Context, name string) ([]byte, error) {
	var geom []byte
	err := s.db.QueryRowContext(ctx, `SELECT geom FROM boundaries WHERE name = ?`, name).Scan(&geom)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: boundary %s", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get boundary %s", name)
	}
	return geom, nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, kind, detail string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		id, kind, detail, time.Now().UTC())
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: record %s run", kind)
	}
	return id, nil
}
