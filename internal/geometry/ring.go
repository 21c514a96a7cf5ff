// Package geometry holds the polygon primitives shared by the area query
// engine: ring construction, buffered containment, bounding boxes, and the
// flat-earth area approximation.
package geometry

import (
	"math"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// ErrDegeneratePolygon is returned when a ring has fewer than three distinct
// vertices.
var ErrDegeneratePolygon = eris.New("geometry: degenerate polygon")

// Ring is a closed polygon boundary with vertices in (lon, lat) order.
type Ring struct {
	flat []float64 // closed: the first vertex is repeated at the end
}

// NewRing builds a ring from [lon, lat] vertex pairs. An explicit closing
// vertex is accepted but not required; the ring is closed either way.
func NewRing(coords [][]float64) (*Ring, error) {
	flat := make([]float64, 0, 2*len(coords)+2)
	for i, c := range coords {
		if len(c) < 2 {
			return nil, eris.Wrapf(ErrDegeneratePolygon, "geometry: vertex %d has %d ordinates", i, len(c))
		}
		flat = append(flat, c[0], c[1])
	}
	if n := len(flat); n >= 4 && flat[0] == flat[n-2] && flat[1] == flat[n-1] {
		flat = flat[:n-2]
	}
	if len(flat) < 6 {
		return nil, eris.Wrapf(ErrDegeneratePolygon, "geometry: %d distinct vertices", len(flat)/2)
	}
	flat = append(flat, flat[0], flat[1])
	return &Ring{flat: flat}, nil
}

// CircleRing approximates a circle of radiusDeg around (lon, lat) as a
// regular 36-gon.
func CircleRing(lon, lat, radiusDeg float64) *Ring {
	const segments = 36
	coords := make([][]float64, 0, segments)
	for k := 0; k < segments; k++ {
		theta := 2 * math.Pi * float64(k) / segments
		coords = append(coords, []float64{
			lon + radiusDeg*math.Cos(theta),
			lat + radiusDeg*math.Sin(theta),
		})
	}
	ring, err := NewRing(coords)
	if err != nil {
		panic(err) // unreachable: 36 distinct vertices by construction
	}
	return ring
}

// Vertices returns the distinct vertex pairs, without the closing duplicate.
func (r *Ring) Vertices() [][]float64 {
	n := len(r.flat)/2 - 1
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = []float64{r.flat[2*i], r.flat[2*i+1]}
	}
	return out
}

// Swapped returns a new ring with the ordinate order of every vertex
// reversed, for retrying a query under the opposite coordinate order.
func (r *Ring) Swapped() *Ring {
	flat := make([]float64, len(r.flat))
	for i := 0; i+1 < len(r.flat); i += 2 {
		flat[i], flat[i+1] = r.flat[i+1], r.flat[i]
	}
	return &Ring{flat: flat}
}

// BBox returns the ring's bounding box.
func (r *Ring) BBox() model.Bounds {
	b := model.Bounds{MinLat: math.Inf(1), MinLon: math.Inf(1), MaxLat: math.Inf(-1), MaxLon: math.Inf(-1)}
	for i := 0; i+1 < len(r.flat); i += 2 {
		lon, lat := r.flat[i], r.flat[i+1]
		b.MinLon = math.Min(b.MinLon, lon)
		b.MaxLon = math.Max(b.MaxLon, lon)
		b.MinLat = math.Min(b.MinLat, lat)
		b.MaxLat = math.Max(b.MaxLat, lat)
	}
	return b
}

// Polygon returns the ring as a single-ring go-geom polygon in XY layout.
func (r *Ring) Polygon() *geom.Polygon {
	flat := make([]float64, len(r.flat))
	copy(flat, r.flat)
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// ContainsBuffered reports whether (lon, lat) lies inside the ring or within
// buffer degrees of its boundary. Growing the buffer never drops a point that
// a smaller buffer admitted.
func (r *Ring) ContainsBuffered(lon, lat, buffer float64) bool {
	if xy.IsPointInRing(geom.XY, geom.Coord{lon, lat}, r.flat) {
		return true
	}
	if buffer <= 0 {
		return false
	}
	for i := 0; i+3 < len(r.flat); i += 2 {
		if distToSegment(lon, lat, r.flat[i], r.flat[i+1], r.flat[i+2], r.flat[i+3]) <= buffer {
			return true
		}
	}
	return false
}

// AreaKM2 approximates the ring's footprint from its bounding box, with a
// cosine correction for meridian convergence at the box's mean latitude.
func (r *Ring) AreaKM2() float64 {
	b := r.BBox()
	meanLat := (b.MinLat + b.MaxLat) / 2
	return (b.MaxLat - b.MinLat) * (b.MaxLon - b.MinLon) * 111.0 * 111.0 * math.Cos(meanLat*math.Pi/180)
}

// distToSegment is the Euclidean distance from p to the segment ab, all in
// degree space.
func distToSegment(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	if dx == 0 && dy == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
