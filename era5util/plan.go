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

package era5util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/era5"
)

// Plan is a sequence of edits to a selection, read from a TOML file such as
//
//	display = "date"
//	remove = ["2020-01-01 03:00:00"]
//	undo = 0
//	removefilters = ["Every 2nd (0)"]
//
//	[[filter]]
//	type = "frequency"
//	every = 2
//
//	[[filter]]
//	type = "interval"
//	start = "2020-01-01T05"
//	end = "2020-01-01T08"
//
//	[[filter]]
//	type = "regex"
//	pattern = ".*00.nc$"
//	format = "filename"
//
// The edits are applied in the order: filters, removals, undo,
// filter removals.
type Plan struct {
	// Display is the display format used for output and for matching
	// Remove entries.
	Display string

	Filters []PlanFilter `toml:"filter"`

	// Remove lists files, rendered in the Display format, to remove
	// as one batch.
	Remove []string

	// Undo is the number of removal batches to undo.
	Undo int

	// RemoveFilters lists descriptions of filters to drop again.
	RemoveFilters []string
}

// PlanFilter describes one filter of a Plan. Type is frequency,
// interval or regex.
type PlanFilter struct {
	Type    string
	Every   int
	Start   string
	End     string
	Pattern string
	Format  string
}

// ReadPlan decodes a plan. Unknown keys are an error.
func ReadPlan(r io.Reader) (*Plan, error) {
	var p Plan
	md, err := toml.DecodeReader(r, &p)
	if err != nil {
		return nil, fmt.Errorf("era5: decoding plan: %v", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, len(u))
		for i, k := range u {
			keys[i] = k.String()
		}
		return nil, &era5.FormatError{Input: strings.Join(keys, ", "), Reason: "unknown plan keys"}
	}
	return &p, nil
}

// LoadPlan reads the plan at path. Environment variables in path are
// expanded.
func LoadPlan(path string) (*Plan, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("era5: opening plan: %v", err)
	}
	defer f.Close()
	return ReadPlan(f)
}

// Filter builds the filter described by pf.
func (pf PlanFilter) Filter() (era5.Filter, error) {
	switch strings.ToLower(pf.Type) {
	case "frequency":
		f, err := era5.NewFrequencyFilter(pf.Every)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "interval":
		var start, end time.Time
		var err error
		if pf.Start != "" {
			if start, err = parseDate(pf.Start); err != nil {
				return nil, &era5.FormatError{Input: pf.Start, Reason: err.Error()}
			}
		}
		if pf.End != "" {
			if end, err = parseDate(pf.End); err != nil {
				return nil, &era5.FormatError{Input: pf.End, Reason: err.Error()}
			}
		}
		f, err := era5.NewIntervalFilter(start, end)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "regex":
		format, err := era5.ParseDisplayFormat(pf.Format)
		if err != nil {
			return nil, err
		}
		f, err := era5.NewRegexFilter(pf.Pattern, format)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, &era5.FormatError{Input: pf.Type, Reason: "filter type must be frequency, interval or regex"}
}

// Apply applies the plan to s and returns the display format. All filters
// are built before s is changed, so an invalid plan leaves s as it was.
func (p *Plan) Apply(s *era5.Selection, log logrus.FieldLogger) (era5.DisplayFormat, error) {
	format, err := era5.ParseDisplayFormat(p.Display)
	if err != nil {
		return format, err
	}
	if p.Undo < 0 {
		return format, &era5.ValidationError{Msg: fmt.Sprintf("cannot undo %d removals", p.Undo)}
	}
	filters := make([]era5.Filter, len(p.Filters))
	for i, pf := range p.Filters {
		if filters[i], err = pf.Filter(); err != nil {
			return format, fmt.Errorf("era5: plan filter %d: %v", i+1, err)
		}
	}

	for i, f := range filters {
		if !s.ApplyFilter(f) {
			log.WithFields(logrus.Fields{"filter": i + 1, "type": p.Filters[i].Type}).Warn("era5: filter removed no files")
		}
	}
	if len(p.Remove) > 0 {
		n := s.RemoveRendered(format, p.Remove...)
		log.WithFields(logrus.Fields{"requested": len(p.Remove), "removed": n}).Info("era5: removed files")
	}
	for i := 0; i < p.Undo; i++ {
		if !s.Undo() {
			log.WithField("undo", i+1).Warn("era5: nothing left to undo")
			break
		}
	}
	if len(p.RemoveFilters) > 0 {
		n := s.RemoveFilters(p.RemoveFilters...)
		log.WithFields(logrus.Fields{"requested": len(p.RemoveFilters), "removed": n}).Info("era5: removed filters")
	}
	return format, nil
}
