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
	"strconv"
	"strings"

	"github.com/ctessum/unit"
)

// Hectopascal is the unit of pressure levels.
const Hectopascal = "hPa"

// DefaultLevels lists the pressure levels offered when none are given.
const DefaultLevels = "1000, 800, 900, 700, 600, 500, 400, 300, 200, 100, 90, 80, 70, 60, 50, 40, 30, 20, 10"

// DefaultLevel is the level selected from DefaultLevels when none is given.
const DefaultLevel = 600.0

// Levels is a set of pressure levels in hPa, kept in descending order
// (surface first).
type Levels struct {
	values []float64
}

// ParseLevels parses a comma separated list of pressure levels in hPa.
func ParseLevels(text string) (Levels, error) {
	var values []float64
	for _, tok := range strings.Split(text, ",") {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Levels{}, &FormatError{Input: text, Reason: fmt.Sprintf("%q is not a finite number", tok)}
		}
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	return Levels{values: values}, nil
}

// Len returns the number of levels.
func (l Levels) Len() int { return len(l.values) }

// Unit returns the unit of the level values.
func (l Levels) Unit() string { return Hectopascal }

// Values returns the levels in descending order.
func (l Levels) Values() []float64 {
	return append([]float64(nil), l.values...)
}

// Ascending returns the levels in ascending order, top of the atmosphere
// first.
func (l Levels) Ascending() []float64 {
	out := make([]float64, len(l.values))
	for i, v := range l.values {
		out[len(out)-1-i] = v
	}
	return out
}

// IndexOf returns the index of level v in the ascending order.
func (l Levels) IndexOf(v float64) (int, error) {
	for i, a := range l.Ascending() {
		if a == v {
			return i, nil
		}
	}
	return -1, validationErrorf("pressure level %g %s is not one of %v", v, Hectopascal, l)
}

// Pascals returns the levels in descending order as pressures in Pa.
func (l Levels) Pascals() []*unit.Unit {
	out := make([]*unit.Unit, len(l.values))
	for i, v := range l.values {
		out[i] = unit.New(v*hPaToPa, unit.Pascal)
	}
	return out
}

// pascalsAscending returns the level pressures in Pa, top of the atmosphere
// first.
func (l Levels) pascalsAscending() []float64 {
	p := l.Pascals()
	out := make([]float64, len(p))
	for i, u := range p {
		out[len(p)-1-i] = u.Value()
	}
	return out
}

func (l Levels) String() string {
	s := make([]string, len(l.values))
	for i, v := range l.values {
		s[i] = strconv.FormatFloat(v, 'g', -1, 64) + " " + Hectopascal
	}
	return strings.Join(s, ", ")
}

const hPaToPa = 100.

// pressureScale returns the factor converting pressures in the given unit
// to Pa.
func pressureScale(units string) (*unit.Unit, error) {
	switch strings.TrimSpace(units) {
	case "Pa", "pa", "":
		return unit.New(1, unit.Pascal), nil
	case "hPa", "hpa", "mbar", "mb", "millibars":
		return unit.New(hPaToPa, unit.Pascal), nil
	}
	return nil, &FormatError{Input: units, Reason: "unsupported pressure unit"}
}
