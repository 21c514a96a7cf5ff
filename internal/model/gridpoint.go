// Package model defines the domain types shared by the suitability engine:
// grid points, measurement tables, score bands, and analysis results.
package model

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Valid reports whether the box spans a positive extent on both axes.
func (b Bounds) Valid() bool {
	return b.MinLat < b.MaxLat && b.MinLon < b.MaxLon
}

// GridPoint is one sample location of the shared analysis lattice.
// ID is stable across every criterion table generated from the same grid,
// so per-criterion tables can be joined on it.
type GridPoint struct {
	ID  int     `json:"grid_id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
