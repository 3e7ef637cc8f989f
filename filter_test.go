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
	"reflect"
	"testing"
	"time"
)

func hourly(root string, start time.Time, n int) []DatasetFile {
	out := make([]DatasetFile, n)
	for i := range out {
		out[i] = FromTimestamp(root, start.Add(time.Duration(i)*time.Hour))
	}
	return out
}

func hoursOf(files []DatasetFile) []int {
	out := make([]int, len(files))
	for i, f := range files {
		out[i] = f.Time.Hour()
	}
	return out
}

var jan1 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFrequencyFilter(t *testing.T) {
	files := hourly("/data", jan1, 10)
	for _, test := range []struct {
		every int
		want  []int
	}{
		{every: 2, want: []int{0, 2, 4, 6, 8}},
		{every: 3, want: []int{0, 1, 3, 4, 6, 7, 9}},
		{every: 5, want: []int{0, 1, 2, 3, 5, 6, 7, 8}},
	} {
		f, err := NewFrequencyFilter(test.every)
		if err != nil {
			t.Fatal(err)
		}
		if have := hoursOf(f.Keep(files)); !reflect.DeepEqual(have, test.want) {
			t.Errorf("every %d: have %v, want %v", test.every, have, test.want)
		}
	}
	if _, err := NewFrequencyFilter(4); err == nil {
		t.Error("want error for every 4th")
	}
}

func TestFrequencyDescription(t *testing.T) {
	for every, want := range map[int]string{2: "Every 2nd (7)", 3: "Every 3rd (7)", 5: "Every 5th (7)"} {
		f, _ := NewFrequencyFilter(every)
		if have := f.Description(7); have != want {
			t.Errorf("have %q, want %q", have, want)
		}
	}
}

func TestIntervalFilter(t *testing.T) {
	files := hourly("/data", jan1, 6)
	f, err := NewIntervalFilter(jan1.Add(time.Hour), jan1.Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if have, want := hoursOf(f.Keep(files)), []int{0, 4, 5}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := f.Description(0), "From 2020-01-01 01:00:00 until 2020-01-01 03:00:00"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestIntervalFilterValidation(t *testing.T) {
	for _, test := range []struct {
		start, end time.Time
		msg        string
	}{
		{msg: "era5: start and end dates are not set"},
		{end: jan1, msg: "era5: start date is not set"},
		{start: jan1, msg: "era5: end date is not set"},
		{start: jan1.Add(time.Hour), end: jan1, msg: "era5: start date has to be previous to end date"},
	} {
		_, err := NewIntervalFilter(test.start, test.end)
		if _, ok := err.(*ValidationError); !ok {
			t.Errorf("want *ValidationError, got %v", err)
			continue
		}
		if err.Error() != test.msg {
			t.Errorf("have %q, want %q", err.Error(), test.msg)
		}
	}
	if _, err := NewIntervalFilter(jan1, jan1); err != nil {
		t.Errorf("single instant interval: %v", err)
	}
}

func TestRegexFilter(t *testing.T) {
	files := hourly("/data", jan1, 48)
	f, err := NewRegexFilter(`.*00.nc$`, DisplayFilename)
	if err != nil {
		t.Fatal(err)
	}
	kept := f.Keep(files)
	if len(kept) != 46 {
		t.Errorf("kept %d files, want 46", len(kept))
	}
	for _, k := range kept {
		if k.Time.Hour() == 0 {
			t.Errorf("%s should be removed", k.Filename)
		}
	}
	if f.Description(3) != `.*00.nc$` {
		t.Errorf("description %q", f.Description(3))
	}
}

func TestRegexFilterAnchored(t *testing.T) {
	files := hourly("/data", jan1, 3)
	// Matches are anchored at the start of the rendered name.
	f, err := NewRegexFilter(`01-01`, DisplayDate)
	if err != nil {
		t.Fatal(err)
	}
	if have := len(f.Keep(files)); have != 3 {
		t.Errorf("unanchored match removed files: kept %d", have)
	}
	f, err = NewRegexFilter(`2020-01`, DisplayDate)
	if err != nil {
		t.Fatal(err)
	}
	if have := len(f.Keep(files)); have != 0 {
		t.Errorf("kept %d, want 0", have)
	}
}

func TestRegexFilterBadPattern(t *testing.T) {
	_, err := NewRegexFilter(`(`, DisplayFilename)
	if _, ok := err.(*FormatError); !ok {
		t.Errorf("want *FormatError, got %v", err)
	}
}

func TestRegexFilterLiteral(t *testing.T) {
	files := hourly("/data", jan1, 3)
	f := &RegexFilter{Pattern: `2020-01-01 01`, Format: DisplayDate}
	if have, want := hoursOf(f.Keep(files)), []int{0, 2}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	bad := &RegexFilter{Pattern: `(`, Format: DisplayDate}
	if have := len(bad.Keep(files)); have != 3 {
		t.Errorf("invalid pattern removed files: kept %d", have)
	}
}

func TestFilterKeepLeavesInput(t *testing.T) {
	freq, _ := NewFrequencyFilter(2)
	interval, _ := NewIntervalFilter(jan1.Add(time.Hour), jan1.Add(3*time.Hour))
	re, _ := NewRegexFilter(`.*0[24].nc$`, DisplayFilename)
	for _, f := range []Filter{freq, interval, re} {
		files := hourly("/data", jan1, 6)
		before := append([]DatasetFile(nil), files...)
		kept := f.Keep(files)
		if !reflect.DeepEqual(files, before) {
			t.Errorf("%s: input modified: %v", f.Description(0), hoursOf(files))
		}
		if len(kept) >= len(files) {
			t.Errorf("%s: removed nothing", f.Description(0))
		}
		in := make(map[string]bool)
		for _, d := range files {
			in[d.Key()] = true
		}
		for _, d := range kept {
			if !in[d.Key()] {
				t.Errorf("%s: kept %s which was not in the input", f.Description(0), d.Path)
			}
		}
	}
}
