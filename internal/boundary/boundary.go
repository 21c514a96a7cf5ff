// Package boundary imports administrative boundary shapefiles and stores
// them as EWKB geometry, so area queries can later be clipped to official
// district extents.
package boundary

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/geometry"
	"github.com/zagros-analytics/suitability-cli/internal/model"
)

// Shape is one named boundary read from a shapefile.
type Shape struct {
	Name string
	EWKB []byte
}

// ReadShapefile loads every polygon from a shapefile and encodes it as EWKB
// with SRID 4326. nameField selects the attribute carrying the boundary name;
// records without it are named by index.
func ReadShapefile(path, nameField string) ([]Shape, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer reader.Close() //nolint:errcheck

	nameIdx := -1
	for i, f := range reader.Fields() {
		if f.String() == nameField {
			nameIdx = i
			break
		}
	}

	var shapes []Shape
	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			zap.L().Debug("boundary: skipping non-polygon shape", zap.Int("record", n))
			continue
		}
		g := polygonToMultiPolygon(poly)
		if g == nil {
			continue
		}

		data, err := ewkb.Marshal(g, ewkb.NDR)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: encode record %d", n)
		}

		name := ""
		if nameIdx >= 0 {
			name = reader.ReadAttribute(n, nameIdx)
		}
		if name == "" {
			name = fmt.Sprintf("boundary_%d", n)
		}
		shapes = append(shapes, Shape{Name: name, EWKB: data})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "boundary: read shapefile %s", path)
	}
	if len(shapes) == 0 {
		return nil, eris.Errorf("boundary: no polygon records in %s", path)
	}
	return shapes, nil
}

// polygonToMultiPolygon converts a shapefile polygon, part by part. Malformed
// parts are skipped, not fatal.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// DecodeRing decodes a stored EWKB boundary back into the query engine's
// ring type, using the outer ring of the first polygon.
func DecodeRing(data []byte) (*geometry.Ring, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: decode EWKB")
	}

	var ring *geom.LinearRing
	switch t := g.(type) {
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 || t.Polygon(0).NumLinearRings() == 0 {
			return nil, eris.Wrap(geometry.ErrDegeneratePolygon, "boundary: empty multipolygon")
		}
		ring = t.Polygon(0).LinearRing(0)
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil, eris.Wrap(geometry.ErrDegeneratePolygon, "boundary: empty polygon")
		}
		ring = t.LinearRing(0)
	default:
		return nil, eris.Errorf("boundary: unsupported geometry %T", g)
	}

	coords := make([][]float64, ring.NumCoords())
	for i := range coords {
		c := ring.Coord(i)
		coords[i] = []float64{c.X(), c.Y()}
	}
	return geometry.NewRing(coords)
}

// BBox returns the bounding box of a stored EWKB boundary.
func BBox(data []byte) (model.Bounds, error) {
	ring, err := DecodeRing(data)
	if err != nil {
		return model.Bounds{}, err
	}
	return ring.BBox(), nil
}
