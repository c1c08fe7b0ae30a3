// Package region builds the search rectangles that restrict a move to one
// side of the current city.
package region

import (
	"github.com/paulmach/orb"

	"github.com/domino14/wanderer/city"
	"github.com/domino14/wanderer/geodesy"
)

// WGS84 is the spatial reference of every extent the game builds.
const WGS84 = 4326

const (
	maxLng = 179.99999
	maxLat = 89.99999
)

// Extent is an axis-aligned rectangle in degrees. When XMin > XMax the
// rectangle crosses the antimeridian.
type Extent struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
	WKID int
}

// Bound converts the extent to an orb bound. Wrapping extents are returned
// as-is, so the bound is only meaningful when Wraps is false.
func (e Extent) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{e.XMin, e.YMin}, Max: orb.Point{e.XMax, e.YMax}}
}

// Wraps reports whether the extent crosses the antimeridian.
func (e Extent) Wraps() bool {
	return e.XMin > e.XMax
}

// Contains reports whether p lies inside the extent, taking antimeridian
// wraparound into account.
func (e Extent) Contains(p orb.Point) bool {
	if p.Lat() < e.YMin || p.Lat() > e.YMax {
		return false
	}
	if e.Wraps() {
		return p.Lon() >= e.XMin || p.Lon() <= e.XMax
	}
	return p.Lon() >= e.XMin && p.Lon() <= e.XMax
}

// BuildExtent returns the half of the world lying in direction d from c.
// North and south span all longitudes; east and west span all latitudes and
// reach 180 degrees of longitude away, wrapping once past the antimeridian.
// The second return value is false for an unrecognized direction.
func BuildExtent(c city.City, d geodesy.Direction) (Extent, bool) {
	e := Extent{WKID: WGS84}
	switch d {
	case geodesy.North:
		e.XMin, e.YMin, e.XMax, e.YMax = -maxLng, c.Lat, maxLng, maxLat
	case geodesy.South:
		e.XMin, e.YMin, e.XMax, e.YMax = -maxLng, -maxLat, maxLng, c.Lat
	case geodesy.East:
		xmax := c.Lng + 180
		if xmax > 180 {
			xmax -= 360
		}
		e.XMin, e.YMin, e.XMax, e.YMax = c.Lng, -maxLat, xmax, maxLat
	case geodesy.West:
		xmin := c.Lng - 180
		if xmin < -180 {
			// wrap onto the far side of the antimeridian rather than past -180
			xmin += 360
		}
		e.XMin, e.YMin, e.XMax, e.YMax = xmin, -maxLat, c.Lng, maxLat
	default:
		return Extent{}, false
	}
	return e, true
}
