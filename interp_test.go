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
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

func column(values ...float64) *sparse.DenseArray {
	a := sparse.ZerosDense(len(values), 1)
	copy(a.Elements, values)
	return a
}

func TestLogInterpolate(t *testing.T) {
	// Data is linear in ln(p), so interpolation is exact.
	p := column(1000, 100, 10000)
	d := column(math.Log(1000), math.Log(100), math.Log(10000))
	out, err := LogInterpolate([]float64{100, 500, 10000}, p, d)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{math.Log(100), math.Log(500), math.Log(10000)} {
		if have := out.Get(i, 0); math.Abs(have-want) > 1e-12 {
			t.Errorf("level %d: have %g, want %g", i, have, want)
		}
	}
}

func TestLogInterpolateOutOfRange(t *testing.T) {
	p := column(100, 1000)
	d := column(1, 2)
	out, err := LogInterpolate([]float64{50, 2000}, p, d)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Elements {
		if !math.IsNaN(v) {
			t.Errorf("element %d = %g, want NaN", i, v)
		}
	}
}

func TestLogInterpolateSkipsMissing(t *testing.T) {
	p := column(100, 300, 1000)
	d := column(1, math.NaN(), 2)
	out, err := LogInterpolate([]float64{300}, p, d)
	if err != nil {
		t.Fatal(err)
	}
	want := 1 + (math.Log(300)-math.Log(100))/(math.Log(1000)-math.Log(100))
	if have := out.Get(0, 0); math.Abs(have-want) > 1e-12 {
		t.Errorf("have %g, want %g", have, want)
	}
}

func TestLogInterpolateShape(t *testing.T) {
	if _, err := LogInterpolate([]float64{1}, column(1, 2), column(1)); err == nil {
		t.Error("want error for mismatched shapes")
	}
}

func TestNanMean(t *testing.T) {
	if have := nanMean([]float64{1, math.NaN(), 3}); have != 2 {
		t.Errorf("have %g, want 2", have)
	}
	if have := nanMean([]float64{math.NaN()}); !math.IsNaN(have) {
		t.Errorf("have %g, want NaN", have)
	}
}
