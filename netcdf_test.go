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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/spf13/afero"
)

// testLevels are the model level pressures in hPa of the test files,
// top of the atmosphere first.
var testLevels = []float32{100, 500, 1000}

type testVar struct {
	name  string
	dims  []string
	data  interface{}
	attrs map[string]interface{}
}

func writeNetCDF(t *testing.T, path string, dims []string, lengths []int, vars []testVar) {
	h := cdf.NewHeader(dims, lengths)
	for _, v := range vars {
		switch v.data.(type) {
		case []float32:
			h.AddVariable(v.name, v.dims, []float32{0})
		case []int16:
			h.AddVariable(v.name, v.dims, []int16{0})
		default:
			t.Fatalf("unsupported test data type %T", v.data)
		}
		for a, val := range v.attrs {
			h.AddAttribute(v.name, a, val)
		}
	}
	h.Define()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		end := append([]int(nil), f.Header.Lengths(v.name)...)
		w := f.Writer(v.name, make([]int, len(end)), end)
		if _, err := w.Write(v.data); err != nil {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
}

// writeERA5 writes a file on a global grid of nlat by nlon cells holding
// PRESS (hPa), TEMP = temp(level, lat index, lon index) and a
// two-dimensional TROP1 = trop.
func writeERA5(t *testing.T, path string, nlat, nlon int, temp func(k, j, i int) float64, trop float32) {
	nlev := len(testLevels)
	press := make([]float32, nlev*nlat*nlon)
	tk := make([]float32, nlev*nlat*nlon)
	for k := 0; k < nlev; k++ {
		for j := 0; j < nlat; j++ {
			for i := 0; i < nlon; i++ {
				n := (k*nlat+j)*nlon + i
				press[n] = testLevels[k]
				tk[n] = float32(temp(k, j, i))
			}
		}
	}
	tp := make([]float32, nlat*nlon)
	for i := range tp {
		tp[i] = trop
	}
	writeNetCDF(t, path,
		[]string{"time", "lev", "lat", "lon"},
		[]int{1, nlev, nlat, nlon},
		[]testVar{
			{name: "PRESS", dims: []string{"time", "lev", "lat", "lon"}, data: press, attrs: map[string]interface{}{"units": "hPa"}},
			{name: "TEMP", dims: []string{"time", "lev", "lat", "lon"}, data: tk, attrs: map[string]interface{}{"units": "K"}},
			{name: "TROP1", dims: []string{"time", "lat", "lon"}, data: tp, attrs: map[string]interface{}{"units": "m"}},
		})
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "era5")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDatasetMetadata(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test.nc")
	writeERA5(t, path, 5, 8, func(k, j, i int) float64 { return 0 }, 1)

	d, err := OpenDataset(afero.NewOsFs(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if have, want := d.Variables(), []string{"PRESS", "TEMP", "TROP1"}; !reflect.DeepEqual(have, want) {
		t.Errorf("variables: have %v, want %v", have, want)
	}
	if !d.Has("TEMP") || d.Has("U") {
		t.Error("Has is wrong")
	}
	if have, want := d.Dimensions("TEMP"), []string{"lev", "lat", "lon"}; !reflect.DeepEqual(have, want) {
		t.Errorf("dimensions: have %v, want %v", have, want)
	}
	if have := d.Units("PRESS"); have != "hPa" {
		t.Errorf("units: %q", have)
	}
}

func TestDatasetRead(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test.nc")
	writeERA5(t, path, 5, 8, func(k, j, i int) float64 { return float64(100*k + 10*j + i) }, 3)

	d, err := OpenDataset(afero.NewOsFs(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	temp, err := d.Read("TEMP")
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{3, 5, 8}; !reflect.DeepEqual(temp.Shape, want) {
		t.Fatalf("shape: have %v, want %v", temp.Shape, want)
	}
	if have := temp.Get(2, 4, 7); have != 247 {
		t.Errorf("TEMP[2,4,7] = %g, want 247", have)
	}
	p, err := d.ReadPressure()
	if err != nil {
		t.Fatal(err)
	}
	if have := p.Get(1, 0, 0); have != 50000 {
		t.Errorf("pressure = %g Pa, want 50000", have)
	}
	trop, err := d.Read("TROP1")
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{5, 8}; !reflect.DeepEqual(trop.Shape, want) {
		t.Errorf("TROP1 shape: have %v, want %v", trop.Shape, want)
	}
	if _, err := d.Read("U"); err == nil {
		t.Error("want error for missing variable")
	}
}

func TestDatasetReadPacked(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "packed.nc")
	writeNetCDF(t, path, []string{"lat", "lon"}, []int{2, 2}, []testVar{{
		name: "SH",
		dims: []string{"lat", "lon"},
		data: []int16{0, 10, -32767, 20},
		attrs: map[string]interface{}{
			"scale_factor": []float64{0.5},
			"add_offset":   []float64{100},
			"_FillValue":   []int16{-32767},
		},
	}})
	d, err := OpenDataset(afero.NewOsFs(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	sh, err := d.Read("SH")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{100, 105, math.NaN(), 110}
	for i, w := range want {
		have := sh.Elements[i]
		if math.IsNaN(w) != math.IsNaN(have) || (!math.IsNaN(w) && have != w) {
			t.Errorf("element %d: have %g, want %g", i, have, w)
		}
	}
}

func TestSliceArea(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test.nc")
	writeERA5(t, path, 181, 360, func(k, j, i int) float64 { return float64(1000*j + i) }, 0)
	d, err := OpenDataset(afero.NewOsFs(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	temp, err := d.Read("TEMP")
	if err != nil {
		t.Fatal(err)
	}

	// Crossing the prime meridian.
	s, err := SliceArea(temp, Area{Left: -2, Right: 1, Top: 1, Bottom: 0}.Indices())
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{3, 2, 4}; !reflect.DeepEqual(s.Shape, want) {
		t.Fatalf("shape: have %v, want %v", s.Shape, want)
	}
	want := []float64{89000, 89001, 89358, 89359, 90000, 90001, 90358, 90359}
	if have := s.Elements[:8]; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}
