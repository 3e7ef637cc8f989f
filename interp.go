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
	"reflect"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// LogInterpolate interpolates data from model levels to the target
// pressures, linearly in the logarithm of pressure. The first dimension of
// pressure and data is the vertical one; both must have the same shape and
// the same pressure unit as targets. The output has len(targets) levels in
// the order of targets. Targets outside the pressure range of a column are
// NaN.
func LogInterpolate(targets []float64, pressure, data *sparse.DenseArray) (*sparse.DenseArray, error) {
	if !reflect.DeepEqual(pressure.Shape, data.Shape) {
		return nil, fmt.Errorf("era5: interpolation: pressure shape %v != data shape %v", pressure.Shape, data.Shape)
	}
	if len(data.Shape) == 0 {
		return nil, fmt.Errorf("era5: interpolation: empty field")
	}
	nz := data.Shape[0]
	ncol := 1
	for _, l := range data.Shape[1:] {
		ncol *= l
	}
	shape := append([]int{len(targets)}, data.Shape[1:]...)
	out := sparse.ZerosDense(shape...)

	logTargets := make([]float64, len(targets))
	for i, t := range targets {
		logTargets[i] = math.Log(t)
	}

	lnp := make([]float64, 0, nz)
	val := make([]float64, 0, nz)
	for c := 0; c < ncol; c++ {
		lnp, val = lnp[:0], val[:0]
		for k := 0; k < nz; k++ {
			p, v := pressure.Elements[k*ncol+c], data.Elements[k*ncol+c]
			if math.IsNaN(p) || math.IsNaN(v) || p <= 0 {
				continue
			}
			lnp = append(lnp, math.Log(p))
			val = append(val, v)
		}
		inds := make([]int, len(lnp))
		floats.Argsort(lnp, inds)
		sorted := make([]float64, len(inds))
		for i, j := range inds {
			sorted[i] = val[j]
		}
		for i, lt := range logTargets {
			out.Elements[i*ncol+c] = interpolateSorted(lnp, sorted, lt)
		}
	}
	return out, nil
}

// interpolateSorted linearly interpolates y at x, where xs is ascending.
func interpolateSorted(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 0 || x < xs[0] || x > xs[n-1] {
		return math.NaN()
	}
	for i := 0; i < n-1; i++ {
		if x > xs[i+1] {
			continue
		}
		if xs[i+1] == xs[i] {
			return ys[i]
		}
		w := (x - xs[i]) / (xs[i+1] - xs[i])
		return ys[i] + w*(ys[i+1]-ys[i])
	}
	return ys[n-1]
}

// nanMean returns the mean of the values that are not NaN, or NaN if there
// are none.
func nanMean(values []float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	return floats.Sum(valid) / float64(len(valid))
}
