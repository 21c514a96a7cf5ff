package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/db"
	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, primarily for tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS grid_points (
	id  INTEGER PRIMARY KEY,
	lat DOUBLE PRECISION NOT NULL,
	lon DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS measurements (
	criterion TEXT             NOT NULL,
	date      TEXT             NOT NULL,
	grid_id   INTEGER          NOT NULL,
	lat       DOUBLE PRECISION NOT NULL,
	lon       DOUBLE PRECISION NOT NULL,
	value     DOUBLE PRECISION NOT NULL,
	units     TEXT,
	PRIMARY KEY (criterion, date, grid_id)
);

CREATE TABLE IF NOT EXISTS composite_results (
	date       TEXT             NOT NULL,
	grid_id    INTEGER          NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	category   TEXT             NOT NULL,
	weight_sum DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (date, grid_id)
);

CREATE TABLE IF NOT EXISTS boundaries (
	name       TEXT PRIMARY KEY,
	geom       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind       TEXT NOT NULL,
	detail     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_measurements_criterion_date ON measurements(criterion, date);
CREATE INDEX IF NOT EXISTS idx_composite_date ON composite_results(date);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

// Pool exposes the underlying pool for subsystems needing direct queries.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) SaveGridPoints(ctx context.Context, points []model.GridPoint) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM grid_points`); err != nil {
		return eris.Wrap(err, "postgres: clear grid points")
	}
	rows := make([][]any, len(points))
	for i, p := range points {
		rows[i] = []any{p.ID, p.Lat, p.Lon}
	}
	_, err := db.CopyInto(ctx, s.pool, "grid_points", []string{"id", "lat", "lon"}, rows)
	return err
}

func (s *PostgresStore) GridPoints(ctx context.Context) ([]model.GridPoint, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, lat, lon FROM grid_points ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list grid points")
	}
	defer rows.Close()

	var points []model.GridPoint
	for rows.Next() {
		var p model.GridPoint
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lon); err != nil {
			return nil, eris.Wrap(err, "postgres: scan grid point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "postgres: grid points iterate")
}

func (s *PostgresStore) SaveMeasurements(ctx context.Context, criterion string, rows []model.Measurement) error {
	_, err := db.UpsertMeasurements(ctx, s.pool, criterion, rows)
	return err
}

func (s *PostgresStore) Measurements(ctx context.Context, criterion, date string) ([]model.Measurement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, grid_id, lat, lon, value, COALESCE(units, '')
		 FROM measurements WHERE criterion = $1 AND date = $2 ORDER BY grid_id`,
		criterion, date)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list measurements %s", criterion)
	}
	defer rows.Close()

	var out []model.Measurement
	for rows.Next() {
		var m model.Measurement
		if err := rows.Scan(&m.Date, &m.GridID, &m.Lat, &m.Lon, &m.Value, &m.Units); err != nil {
			return nil, eris.Wrap(err, "postgres: scan measurement")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: measurements iterate")
}

func (s *PostgresStore) LatestDate(ctx context.Context, criterion string) (string, error) {
	var date *string
	err := s.pool.QueryRow(ctx,
		`SELECT MAX(date) FROM measurements WHERE criterion = $1`, criterion).Scan(&date)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: latest date %s", criterion)
	}
	if date == nil {
		return "", nil
	}
	return *date, nil
}

func (s *PostgresStore) Dates(ctx context.Context, criterion string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT date FROM measurements WHERE criterion = $1 ORDER BY date`, criterion)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: dates %s", criterion)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "postgres: scan date")
		}
		dates = append(dates, d)
	}
	return dates, eris.Wrap(rows.Err(), "postgres: dates iterate")
}

func (s *PostgresStore) Criteria(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT criterion FROM measurements ORDER BY criterion`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list criteria")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan criterion")
		}
		names = append(names, n)
	}
	return names, eris.Wrap(rows.Err(), "postgres: criteria iterate")
}

func (s *PostgresStore) SaveComposite(ctx context.Context, results []model.CompositeResult) error {
	if len(results) == 0 {
		return nil
	}
	date := results[0].Date
	if _, err := s.pool.Exec(ctx, `DELETE FROM composite_results WHERE date = $1`, date); err != nil {
		return eris.Wrapf(err, "postgres: clear composite %s", date)
	}

	rows := make([][]any, 0, len(results))
	for _, r := range results {
		if !r.Defined {
			continue
		}
		rows = append(rows, []any{r.Date, r.GridID, r.Score, r.Category, r.WeightSum})
	}
	_, err := db.CopyInto(ctx, s.pool, "composite_results",
		[]string{"date", "grid_id", "score", "category", "weight_sum"}, rows)
	return err
}

func (s *PostgresStore) Composite(ctx context.Context, date string) ([]model.CompositeResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, grid_id, score, category, weight_sum
		 FROM composite_results WHERE date = $1 ORDER BY grid_id`, date)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list composite %s", date)
	}
	defer rows.Close()

	var out []model.CompositeResult
	for rows.Next() {
		r := model.CompositeResult{Defined: true}
		if err := rows.Scan(&r.Date, &r.GridID, &r.Score, &r.Category, &r.WeightSum); err != nil {
			return nil, eris.Wrap(err, "postgres: scan composite")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: composite iterate")
}

func (s *PostgresStore) LatestCompositeDate(ctx context.Context) (string, error) {
	var date *string
	err := s.pool.QueryRow(ctx, `SELECT MAX(date) FROM composite_results`).Scan(&date)
	if err != nil {
		return "", eris.Wrap(err, "postgres: latest composite date")
	}
	if date == nil {
		return "", nil
	}
	return *date, nil
}

func (s *PostgresStore) SaveBoundary(ctx context.Context, name string, ewkb []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO boundaries (name, geom, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET geom = $2, updated_at = $3`,
		name, ewkb, time.Now().UTC())
	return eris.Wrapf(err, "postgres: save boundary %s", name)
}

func (s *PostgresStore) Boundary(ctx context.Context, name string) ([]byte, error) {
	var geom []byte
	err := s.pool.QueryRow(ctx, `SELECT geom FROM boundaries WHERE name = $1`, name).Scan(&geom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: boundary %s", name)
		}
		return nil, eris.Wrapf(err, "postgres: get boundary %s", name)
	}
	return geom, nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, kind, detail string) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, kind, detail, created_at) VALUES ($1, $2, $3, $4)`,
		id, kind, detail, time.Now().UTC())
	if err != nil {
		return "", eris.Wrapf(err, "postgres: record %s run", kind)
	}
	return id, nil
}
