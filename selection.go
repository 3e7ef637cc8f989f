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
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Selection is the working set of selected files together with the
// filters applied to it and a stack of manual removals that can be undone.
//
// Every file handed to NewSelection is, at any time, in exactly one of:
// the selected datasets, the record of an applied filter, or an undo batch.
// A Selection is not safe for concurrent use.
type Selection struct {
	datasets []DatasetFile
	filters  []DatasetFileFilter
	removed  [][]DatasetFile

	// seq numbers frequency filters. It only advances when a frequency
	// filter actually removed files.
	seq int

	Log logrus.FieldLogger
}

// NewSelection returns a selection holding files, sorted by time.
func NewSelection(files []DatasetFile) *Selection {
	s := &Selection{
		datasets: append([]DatasetFile(nil), files...),
		Log:      logrus.StandardLogger(),
	}
	s.sortDatasets()
	return s
}

// Datasets returns the selected files in time order.
func (s *Selection) Datasets() []DatasetFile {
	return append([]DatasetFile(nil), s.datasets...)
}

// Len returns the number of selected files.
func (s *Selection) Len() int { return len(s.datasets) }

// Filters returns the applied filters sorted by description.
func (s *Selection) Filters() []DatasetFileFilter {
	out := make([]DatasetFileFilter, len(s.filters))
	for i, f := range s.filters {
		out[i] = DatasetFileFilter{Description: f.Description, Files: append([]DatasetFile(nil), f.Files...)}
	}
	return out
}

// Paths returns the paths of the selected files in time order.
func (s *Selection) Paths() []string {
	out := make([]string, len(s.datasets))
	for i, d := range s.datasets {
		out[i] = d.Path
	}
	return out
}

// Times returns the dates of the selected files in time order.
func (s *Selection) Times() []time.Time {
	out := make([]time.Time, len(s.datasets))
	for i, d := range s.datasets {
		out[i] = d.Time
	}
	return out
}

// Render returns the selected files rendered in the given format.
func (s *Selection) Render(format DisplayFormat) []string {
	out := make([]string, len(s.datasets))
	for i, d := range s.datasets {
		out[i] = d.Format(format)
	}
	return out
}

// ApplyFilter applies f to the selected files. The removed files are kept
// in a DatasetFileFilter record. If f removes nothing, no record is created
// and ApplyFilter returns false.
func (s *Selection) ApplyFilter(f Filter) bool {
	kept := f.Keep(s.datasets)
	keep := make(map[string]bool, len(kept))
	for _, d := range kept {
		keep[d.Key()] = true
	}
	var removed, remaining []DatasetFile
	for _, d := range s.datasets {
		if keep[d.Key()] {
			remaining = append(remaining, d)
		} else {
			removed = append(removed, d)
		}
	}
	if len(removed) == 0 {
		return false
	}

	desc := f.Description(s.seq)
	if _, ok := f.(*FrequencyFilter); ok {
		s.seq++
	}
	s.filters = append(s.filters, DatasetFileFilter{Description: desc, Files: removed})
	s.sortFilters()
	s.datasets = remaining
	s.Log.WithFields(logrus.Fields{
		"filter":  desc,
		"removed": len(removed),
		"kept":    len(remaining),
	}).Debug("era5: applied filter")
	return true
}

// RemoveFilters drops the applied filters with the given descriptions and
// returns their files to the selection. It returns the number of filters
// removed.
func (s *Selection) RemoveFilters(descriptions ...string) int {
	drop := make(map[string]bool, len(descriptions))
	for _, d := range descriptions {
		drop[d] = true
	}
	var kept []DatasetFileFilter
	n := 0
	for _, f := range s.filters {
		if !drop[f.Description] {
			kept = append(kept, f)
			continue
		}
		s.datasets = append(s.datasets, f.Files...)
		n++
	}
	if n == 0 {
		return 0
	}
	s.filters = kept
	s.sortDatasets()
	return n
}

// Remove removes the given files from the selection as one batch that can
// be restored with Undo. Files are matched by Key. It returns the number of
// files removed.
func (s *Selection) Remove(files ...DatasetFile) int {
	match := make(map[string]bool, len(files))
	for _, f := range files {
		match[f.Key()] = true
	}
	return s.removeMatching(func(d DatasetFile) bool { return match[d.Key()] })
}

// RemoveRendered removes every selected file whose rendering in format
// equals one of names. Distinct files that render identically (for example
// the same date under two roots) are all removed.
func (s *Selection) RemoveRendered(format DisplayFormat, names ...string) int {
	match := make(map[string]bool, len(names))
	for _, n := range names {
		match[n] = true
	}
	return s.removeMatching(func(d DatasetFile) bool { return match[d.Format(format)] })
}

func (s *Selection) removeMatching(match func(DatasetFile) bool) int {
	var batch, remaining []DatasetFile
	for _, d := range s.datasets {
		if match(d) {
			batch = append(batch, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	if len(batch) == 0 {
		return 0
	}
	s.datasets = remaining
	s.removed = append(s.removed, batch)
	return len(batch)
}

// CanUndo reports whether there is a manual removal to undo.
func (s *Selection) CanUndo() bool { return len(s.removed) > 0 }

// Undo restores the most recent batch of manually removed files. Filtered
// files are only restored by RemoveFilters.
func (s *Selection) Undo() bool {
	if len(s.removed) == 0 {
		return false
	}
	last := s.removed[len(s.removed)-1]
	s.removed = s.removed[:len(s.removed)-1]
	s.datasets = append(s.datasets, last...)
	s.sortDatasets()
	return true
}

func (s *Selection) sortDatasets() {
	sort.SliceStable(s.datasets, func(i, j int) bool { return s.datasets[i].Less(s.datasets[j]) })
}

func (s *Selection) sortFilters() {
	sort.SliceStable(s.filters, func(i, j int) bool { return s.filters[i].Description < s.filters[j].Description })
}
