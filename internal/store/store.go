// Package store persists grids, measurement tables, composite results, and
// area boundaries. Two backends exist: SQLite for single-machine use and
// Postgres for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// ErrNotFound is returned for lookups of entities that do not exist.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence interface for the suitability engine. It also
// satisfies areaquery.Source.
type Store interface {
	// Grid
	SaveGridPoints(ctx context.Context, points []model.GridPoint) error
	GridPoints(ctx context.Context) ([]model.GridPoint, error)

	// Measurements
	SaveMeasurements(ctx context.Context, criterion string, rows []model.Measurement) error
	Measurements(ctx context.Context, criterion, date string) ([]model.Measurement, error)
	LatestDate(ctx context.Context, criterion string) (string, error)
	Dates(ctx context.Context, criterion string) ([]string, error)
	Criteria(ctx context.Context) ([]string, error)

	// Composite index
	SaveComposite(ctx context.Context, results []model.CompositeResult) error
	Composite(ctx context.Context, date string) ([]model.CompositeResult, error)
	LatestCompositeDate(ctx context.Context) (string, error)

	// Boundaries, stored as EWKB geometry blobs
	SaveBoundary(ctx context.Context, name string, ewkb []byte) error
	Boundary(ctx context.Context, name string) ([]byte, error)

	// Runs record import and synthesis provenance.
	RecordRun(ctx context.Context, kind, detail string) (string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
