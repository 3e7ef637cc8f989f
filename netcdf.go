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
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spf13/afero"
)

// PressureVar is the variable holding the pressure of every model level.
const PressureVar = "PRESS"

// Dataset is an open ERA5 NetCDF file.
type Dataset struct {
	Path string

	f  afero.File
	ff *cdf.File
}

// OpenDataset opens the NetCDF file at path.
func OpenDataset(fs afero.Fs, path string) (*Dataset, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("era5: opening dataset: %v", err)
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("era5: reading NetCDF header of %s: %v", path, err)
	}
	return &Dataset{Path: path, f: f, ff: ff}, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error { return d.f.Close() }

// Variables returns the names of the variables in the dataset, sorted.
func (d *Dataset) Variables() []string {
	v := d.ff.Header.Variables()
	sort.Strings(v)
	return v
}

// Has reports whether the dataset contains variable name.
func (d *Dataset) Has(name string) bool {
	return d.ff.Header.Lengths(name) != nil
}

// Dimensions returns the dimension names of variable name after
// squeezing out the time dimension.
func (d *Dataset) Dimensions(name string) []string {
	dims := d.ff.Header.Dimensions(name)
	if d.hasTime(name) {
		dims = dims[1:]
	}
	return dims
}

// Units returns the units attribute of variable name, or "" if it has none.
func (d *Dataset) Units(name string) string {
	switch u := d.ff.Header.GetAttribute(name, "units").(type) {
	case string:
		return u
	case []uint8:
		return string(u)
	}
	return ""
}

// hasTime reports whether the outermost dimension of variable name is the
// record dimension or a dimension called time.
func (d *Dataset) hasTime(name string) bool {
	dims := d.ff.Header.Dimensions(name)
	if len(dims) < 2 {
		return false
	}
	return d.ff.Header.IsRecordVariable(name) || dims[0] == "time"
}

// Read reads variable name. Only the first time step is read from time
// dependent variables and the time dimension is dropped. Packed values are
// unpacked with scale_factor and add_offset, and fill values become NaN.
func (d *Dataset) Read(name string) (*sparse.DenseArray, error) {
	h := d.ff.Header
	lengths := h.Lengths(name)
	if lengths == nil {
		return nil, fmt.Errorf("era5: variable %s not in %s", name, d.Path)
	}
	shape := append([]int(nil), lengths...)
	var begin, end []int
	if d.hasTime(name) {
		begin = make([]int, len(lengths))
		end = append([]int(nil), lengths...)
		end[0] = 1
		shape = shape[1:]
	}
	if len(shape) == 0 {
		shape = []int{1}
	}
	n := 1
	for _, l := range shape {
		n *= l
	}

	r := d.ff.Reader(name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("era5: reading variable %s from %s: %v", name, d.Path, err)
	}

	out := sparse.ZerosDense(shape...)
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	case []float64:
		copy(out.Elements, b)
	case []int16:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	case []uint8:
		for i, v := range b {
			out.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("era5: variable %s has unsupported type %T", name, buf)
	}

	fill := d.attributeValues(name, "_FillValue")
	fill = append(fill, d.attributeValues(name, "missing_value")...)
	scale, offset := 1., 0.
	if v := d.attributeValues(name, "scale_factor"); len(v) > 0 {
		scale = v[0]
	}
	if v := d.attributeValues(name, "add_offset"); len(v) > 0 {
		offset = v[0]
	}
	for i, v := range out.Elements {
		for _, f := range fill {
			if v == f {
				v = math.NaN()
				break
			}
		}
		out.Elements[i] = v*scale + offset
	}
	return out, nil
}

// attributeValues returns numeric attribute a of variable v as float64s.
func (d *Dataset) attributeValues(v, a string) []float64 {
	var out []float64
	switch vals := d.ff.Header.GetAttribute(v, a).(type) {
	case []float32:
		for _, x := range vals {
			out = append(out, float64(x))
		}
	case []float64:
		out = append(out, vals...)
	case []int16:
		for _, x := range vals {
			out = append(out, float64(x))
		}
	case []int32:
		for _, x := range vals {
			out = append(out, float64(x))
		}
	case []uint8:
		for _, x := range vals {
			out = append(out, float64(x))
		}
	}
	return out
}

// ReadPressure reads the pressure of every model level in Pa.
func (d *Dataset) ReadPressure() (*sparse.DenseArray, error) {
	p, err := d.Read(PressureVar)
	if err != nil {
		return nil, err
	}
	scale, err := pressureScale(d.Units(PressureVar))
	if err != nil {
		return nil, fmt.Errorf("era5: %s in %s: %v", PressureVar, d.Path, err)
	}
	p.Scale(scale.Value())
	return p, nil
}

// SliceArea returns the part of field inside the area. The last two
// dimensions of field must be latitude and longitude on the global grid.
// Indices beyond the grid, such as the cyclic column 360 of a grid that is
// 360 columns wide, are skipped.
func SliceArea(field *sparse.DenseArray, ai AreaIndices) (*sparse.DenseArray, error) {
	nd := len(field.Shape)
	if nd < 2 {
		return nil, fmt.Errorf("era5: slicing a %d-dimensional field to an area", nd)
	}
	nlat, nlon := field.Shape[nd-2], field.Shape[nd-1]
	var lats, lons []int
	for _, j := range ai.LatIndices() {
		if j >= 0 && j < nlat {
			lats = append(lats, j)
		}
	}
	for _, i := range ai.LonIndices() {
		if i >= 0 && i < nlon {
			lons = append(lons, i)
		}
	}

	shape := append(append([]int(nil), field.Shape[:nd-2]...), len(lats), len(lons))
	out := sparse.ZerosDense(shape...)
	outer := 1
	for _, l := range field.Shape[:nd-2] {
		outer *= l
	}
	k := 0
	for o := 0; o < outer; o++ {
		base := o * nlat * nlon
		for _, j := range lats {
			for _, i := range lons {
				out.Elements[k] = field.Elements[base+j*nlon+i]
				k++
			}
		}
	}
	return out, nil
}
