/*
Copyright © 2020 the InMAP authors.
This file is part of era5.

era5 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

era5 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with era5.  If not, see <http://www.gnu.org/licenses/>.
*/

package era5

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Area is a longitude/latitude rectangle in whole degrees. Longitudes are
// in [-180, 180] and latitudes in [-90, 90].
type Area struct {
	Left, Right, Top, Bottom int
}

// Globe is the whole grid.
var Globe = Area{Left: -180, Right: 180, Top: 90, Bottom: -90}

// DefaultArea is the area selected when none is given.
var DefaultArea = Area{Left: 0, Right: 10, Top: 10, Bottom: 0}

// Validate checks that the area lies on the globe, that Top is north of
// Bottom and that Right is east of Left.
func (a Area) Validate() error {
	switch {
	case a.Left < -180 || a.Left > 180 || a.Right < -180 || a.Right > 180:
		return validationErrorf("longitudes must be within [-180, 180], got left=%d right=%d", a.Left, a.Right)
	case a.Top < -90 || a.Top > 90 || a.Bottom < -90 || a.Bottom > 90:
		return validationErrorf("latitudes must be within [-90, 90], got top=%d bottom=%d", a.Top, a.Bottom)
	case a.Top <= a.Bottom:
		return validationErrorf("top latitude (%d) must be north of bottom latitude (%d)", a.Top, a.Bottom)
	case a.Right <= a.Left:
		return validationErrorf("right longitude (%d) must be east of left longitude (%d)", a.Right, a.Left)
	}
	return nil
}

// Bounds returns the area as a rectangle with longitude as X and latitude
// as Y.
func (a Area) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: float64(a.Left), Y: float64(a.Bottom)},
		Max: geom.Point{X: float64(a.Right), Y: float64(a.Top)},
	}
}

func (a Area) String() string {
	return fmt.Sprintf("lon [%d, %d] lat [%d, %d]", a.Left, a.Right, a.Bottom, a.Top)
}

// IndexRange is the half-open index range [Start, End).
type IndexRange struct {
	Start, End int
}

// Len returns the number of indices in r.
func (r IndexRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// AreaIndices locates an Area on the global grid with latitudes from +90 at
// index 0 down to -90, and longitudes from 0 eastwards. Lon holds one range,
// or two when the area crosses the prime meridian.
type AreaIndices struct {
	Lat IndexRange
	Lon []IndexRange
}

// Indices maps the area onto the global 1° grid. It does not validate the
// area; a malformed area gives empty or reversed ranges.
func (a Area) Indices() AreaIndices {
	var lon []IndexRange
	switch {
	case a.Left < 0 && a.Right >= 0:
		lon = []IndexRange{{0, a.Right + 1}, {a.Left + 360, 361}}
	case a.Left < 0 && a.Right < 0:
		lon = []IndexRange{{a.Left + 360, a.Right + 361}}
	default:
		lon = []IndexRange{{a.Left, a.Right + 1}}
	}
	return AreaIndices{
		Lat: IndexRange{180 - (a.Top + 90), 180 - (a.Bottom + 90) + 1},
		Lon: lon,
	}
}

// Contiguous reports whether the longitude indices form a single range.
func (ai AreaIndices) Contiguous() bool { return len(ai.Lon) == 1 }

// LatIndices lists the latitude indices.
func (ai AreaIndices) LatIndices() []int { return expand(ai.Lat) }

// LonIndices lists the longitude indices in storage order of the ranges.
func (ai AreaIndices) LonIndices() []int { return expand(ai.Lon...) }

func expand(ranges ...IndexRange) []int {
	var out []int
	for _, r := range ranges {
		for i := r.Start; i < r.End; i++ {
			out = append(out, i)
		}
	}
	return out
}
