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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Path returns steps evenly spaced points from start to end, both
// included. X is longitude and Y is latitude.
func Path(start, end geom.Point, steps int) []geom.Point {
	if steps < 2 {
		return []geom.Point{start}
	}
	out := make([]geom.Point, steps)
	for i := range out {
		f := float64(i) / float64(steps-1)
		out[i] = geom.Point{
			X: start.X + f*(end.X-start.X),
			Y: start.Y + f*(end.Y-start.Y),
		}
	}
	return out
}

// CrossSection interpolates variable name to the given pressure levels and
// samples it along the path from start to end. The result has one row per
// level in ascending order and one column per path point.
func (d *Dataset) CrossSection(name string, levels Levels, start, end geom.Point, steps int) (*sparse.DenseArray, []geom.Point, error) {
	globe := Globe.Bounds()
	for _, p := range []geom.Point{start, end} {
		q := p
		if q.X > 180 && q.X <= 360 {
			q.X -= 360
		}
		if !globe.Overlaps(q.Bounds()) {
			return nil, nil, validationErrorf("cross section point (lon %g, lat %g) is not on the globe", p.X, p.Y)
		}
	}
	if steps < 2 {
		return nil, nil, validationErrorf("a cross section needs at least 2 steps, not %d", steps)
	}
	field, err := d.Read(name)
	if err != nil {
		return nil, nil, err
	}
	press, err := d.ReadPressure()
	if err != nil {
		return nil, nil, err
	}
	targets := levels.pascalsAscending()
	onLevels, err := LogInterpolate(targets, press, field)
	if err != nil {
		return nil, nil, fmt.Errorf("era5: cross section of %s: %v", name, err)
	}

	path := Path(start, end, steps)
	out := sparse.ZerosDense(len(targets), len(path))
	for k := range targets {
		for i, p := range path {
			out.Set(bilinear(onLevels, k, p), k, i)
		}
	}
	return out, path, nil
}

// bilinear samples level k of a (level, lat, lon) field on a regular global
// grid at point p. Longitudes wrap around.
func bilinear(field *sparse.DenseArray, k int, p geom.Point) float64 {
	nlat, nlon := field.Shape[1], field.Shape[2]
	if nlat < 2 || nlon < 1 {
		return math.NaN()
	}
	res := 180 / float64(nlat-1)

	row := (90 - p.Y) / res
	r0 := int(math.Floor(row))
	if r0 >= nlat-1 {
		r0 = nlat - 2
	}
	if r0 < 0 {
		r0 = 0
	}
	fr := row - float64(r0)

	col := math.Mod(p.X, 360)
	if col < 0 {
		col += 360
	}
	col /= res
	c0 := int(math.Floor(col)) % nlon
	c1 := (c0 + 1) % nlon
	fc := col - math.Floor(col)

	top := (1-fc)*field.Get(k, r0, c0) + fc*field.Get(k, r0, c1)
	bottom := (1-fc)*field.Get(k, r0+1, c0) + fc*field.Get(k, r0+1, c1)
	return (1-fr)*top + fr*bottom
}
