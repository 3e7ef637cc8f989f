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
	"regexp"
	"time"
)

// A Filter selects which files of a sequence are kept. Implementations
// must not modify their input.
type Filter interface {
	// Keep returns the files that pass the filter, in input order.
	Keep(files []DatasetFile) []DatasetFile

	// Description describes the filter. seq is the sequence number
	// assigned by the Selection the filter is applied to.
	Description(seq int) string
}

// DatasetFileFilter records the files removed by one application of a
// Filter so that they can be restored.
type DatasetFileFilter struct {
	Description string
	Files       []DatasetFile
}

func (f DatasetFileFilter) String() string { return f.Description }

// FrequencyFilter removes every Every-th file.
type FrequencyFilter struct {
	Every int
}

// NewFrequencyFilter returns a filter removing every 2nd, 3rd or 5th file.
func NewFrequencyFilter(every int) (*FrequencyFilter, error) {
	switch every {
	case 2, 3, 5:
		return &FrequencyFilter{Every: every}, nil
	}
	return nil, validationErrorf("frequency filter can remove every 2nd, 3rd or 5th file, not every %d", every)
}

// Keep implements Filter.
func (f *FrequencyFilter) Keep(files []DatasetFile) []DatasetFile {
	if f.Every < 1 {
		return append([]DatasetFile(nil), files...)
	}
	out := make([]DatasetFile, 0, len(files))
	for i, file := range files {
		if (i+1)%f.Every != 0 {
			out = append(out, file)
		}
	}
	return out
}

// Description implements Filter.
func (f *FrequencyFilter) Description(seq int) string {
	return fmt.Sprintf("Every %s (%d)", ordinal(f.Every), seq)
}

func ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

// IntervalFilter removes the files between Start and End, inclusive.
type IntervalFilter struct {
	Start, End time.Time
}

// NewIntervalFilter checks that both ends of the interval are set and in
// order.
func NewIntervalFilter(start, end time.Time) (*IntervalFilter, error) {
	switch {
	case start.IsZero() && end.IsZero():
		return nil, validationErrorf("start and end dates are not set")
	case start.IsZero():
		return nil, validationErrorf("start date is not set")
	case end.IsZero():
		return nil, validationErrorf("end date is not set")
	case start.After(end):
		return nil, validationErrorf("start date has to be previous to end date")
	}
	return &IntervalFilter{Start: start, End: end}, nil
}

// Keep implements Filter.
func (f *IntervalFilter) Keep(files []DatasetFile) []DatasetFile {
	out := make([]DatasetFile, 0, len(files))
	for _, file := range files {
		if file.Time.Before(f.Start) || file.Time.After(f.End) {
			out = append(out, file)
		}
	}
	return out
}

// Description implements Filter.
func (f *IntervalFilter) Description(int) string {
	return fmt.Sprintf("From %s until %s", f.Start.Format(DateLayout), f.End.Format(DateLayout))
}

// RegexFilter removes the files whose rendering in Format matches
// Pattern at its beginning. A RegexFilter built without NewRegexFilter
// compiles Pattern on use and keeps every file if it does not compile.
type RegexFilter struct {
	Pattern string
	Format  DisplayFormat

	re *regexp.Regexp
}

// NewRegexFilter compiles pattern. For example `.*00.nc$` with
// DisplayFilename removes the first hour of each day and `2020-04` with
// DisplayDate removes April 2020.
func NewRegexFilter(pattern string, format DisplayFormat) (*RegexFilter, error) {
	re, err := compileAnchored(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexFilter{Pattern: pattern, Format: format, re: re}, nil
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, &FormatError{Input: pattern, Reason: err.Error()}
	}
	return re, nil
}

// Keep implements Filter.
func (f *RegexFilter) Keep(files []DatasetFile) []DatasetFile {
	re := f.re
	if re == nil || re.String() != `^(?:`+f.Pattern+`)` {
		var err error
		if re, err = compileAnchored(f.Pattern); err != nil {
			return append([]DatasetFile(nil), files...)
		}
	}
	out := make([]DatasetFile, 0, len(files))
	for _, file := range files {
		if !re.MatchString(file.Format(f.Format)) {
			out = append(out, file)
		}
	}
	return out
}

// Description implements Filter.
func (f *RegexFilter) Description(int) string { return f.Pattern }
