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
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/era5/internal/hash"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// VariableNames lists the variables of the ERA5 model level files.
var VariableNames = []string{
	"a", "b", "p0", "ps",
	"GPH", "TEMP", "SH", "OMEGA", "PRESS", "U", "V", "CLWC", "CIWC",
	"SIGMA", "THETA_DOT_CSK", "THETA_DOT_ASK", "THETA_DOT_TOT",
	"ZETA_DOT_TOT", "THETA_DOT_TAS", "THETA", "ZETA", "BVF", "BVF_WET",
	"TROP1", "TROP2",
}

// PlottableVariables lists the variables that can be plotted: all but the
// hybrid coefficients and the surface pressure.
var PlottableVariables = VariableNames[4:]

// MaxVariables is the number of variables a time series can show at once.
const MaxVariables = 2

// minTimeseriesFiles is the number of files a time series needs.
const minTimeseriesFiles = 2

func isPlottable(name string) bool {
	for _, v := range PlottableVariables {
		if v == name {
			return true
		}
	}
	return false
}

// Timeseries computes area means of up to MaxVariables variables over a
// series of files.
type Timeseries struct {
	// Fs is the file system the files are read from.
	Fs afero.Fs

	// CacheSize is the number of per-file results kept in memory.
	CacheSize int

	Log logrus.FieldLogger

	variables []string

	cacheInit sync.Once
	cache     *requestcache.Cache
}

// NewTimeseries returns a time series reading from the OS file system.
func NewTimeseries() *Timeseries {
	return &Timeseries{
		Fs:        afero.NewOsFs(),
		CacheSize: 100,
		Log:       logrus.StandardLogger(),
	}
}

// Variables returns the selected variables in selection order.
func (ts *Timeseries) Variables() []string {
	return append([]string(nil), ts.variables...)
}

// SetVariables replaces the selected variables. On error the selection is
// left unchanged.
func (ts *Timeseries) SetVariables(names ...string) error {
	if len(names) > MaxVariables {
		return validationErrorf("at most %d variables can be selected, got %d", MaxVariables, len(names))
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if !isPlottable(n) {
			return validationErrorf("unknown variable %q", n)
		}
		if seen[n] {
			return validationErrorf("variable %q selected twice", n)
		}
		seen[n] = true
	}
	ts.variables = append([]string(nil), names...)
	return nil
}

// AddVariable adds name to the selected variables. On error the selection
// is left unchanged.
func (ts *Timeseries) AddVariable(name string) error {
	return ts.SetVariables(append(ts.Variables(), name)...)
}

// AreaMean holds the area means of the selected variables in one file, in
// the order of Timeseries.Variables.
type AreaMean struct {
	Time  time.Time
	Path  string
	Means []float64
}

type meanRequest struct {
	path     string
	vars     []string
	area     Area
	levels   Levels
	levelIdx int
}

// AreaMeans returns the mean of every selected variable over area at the
// given pressure level (hPa) for each file, in the order of files.
func (ts *Timeseries) AreaMeans(ctx context.Context, files []DatasetFile, area Area, levels Levels, level float64) ([]AreaMean, error) {
	if len(files) < minTimeseriesFiles {
		return nil, validationErrorf("a time series needs at least %d datasets, got %d", minTimeseriesFiles, len(files))
	}
	if len(ts.variables) == 0 {
		return nil, validationErrorf("no variables selected")
	}
	if err := area.Validate(); err != nil {
		return nil, err
	}
	idx, err := levels.IndexOf(level)
	if err != nil {
		return nil, err
	}

	ts.cacheInit.Do(func() {
		size := ts.CacheSize
		if size <= 0 {
			size = 1
		}
		ts.cache = requestcache.NewCache(ts.process, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(size))
	})

	// Requests block until processed; the cache bounds how many files
	// are read at once.
	vars := ts.Variables()
	out := make([]AreaMean, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			r := ts.cache.NewRequest(gctx,
				meanRequest{path: f.Path, vars: vars, area: area, levels: levels, levelIdx: idx},
				hash.Key(f.Path, vars, area, levels.Values(), idx),
			)
			result, err := r.Result()
			if err != nil {
				return err
			}
			out[i] = AreaMean{
				Time:  f.Time,
				Path:  f.Path,
				Means: append([]float64(nil), result.([]float64)...),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ts.logger().WithFields(logrus.Fields{
		"files":     len(files),
		"variables": vars,
		"area":      area.String(),
		"level":     level,
	}).Info("era5: computed area means")
	return out, nil
}

func (ts *Timeseries) logger() logrus.FieldLogger {
	if ts.Log == nil {
		return logrus.StandardLogger()
	}
	return ts.Log
}

func (ts *Timeseries) process(ctx context.Context, payload interface{}) (interface{}, error) {
	r := payload.(meanRequest)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs := ts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	d, err := OpenDataset(fs, r.path)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	ts.logger().WithField("path", r.path).Debug("era5: computing area mean")
	return d.AreaMean(r.vars, r.area, r.levels, r.levelIdx)
}

// AreaMean returns the NaN-ignoring mean over area of each variable.
// Variables with a vertical dimension are first interpolated to level
// levelIdx of levels.Ascending(); two-dimensional variables are averaged
// directly.
func (d *Dataset) AreaMean(vars []string, area Area, levels Levels, levelIdx int) ([]float64, error) {
	if levelIdx < 0 || levelIdx >= levels.Len() {
		return nil, validationErrorf("level index %d out of range for %d levels", levelIdx, levels.Len())
	}
	ai := area.Indices()
	target := levels.pascalsAscending()[levelIdx : levelIdx+1]

	var press *sparse.DenseArray
	means := make([]float64, len(vars))
	for i, name := range vars {
		field, err := d.Read(name)
		if err != nil {
			return nil, err
		}
		field, err = SliceArea(field, ai)
		if err != nil {
			return nil, err
		}
		switch len(field.Shape) {
		case 2:
		case 3:
			if press == nil {
				p, err := d.ReadPressure()
				if err != nil {
					return nil, err
				}
				if press, err = SliceArea(p, ai); err != nil {
					return nil, err
				}
			}
			if field, err = LogInterpolate(target, press, field); err != nil {
				return nil, fmt.Errorf("era5: %s in %s: %v", name, d.Path, err)
			}
		default:
			return nil, fmt.Errorf("era5: %s in %s has %d dimensions, need 2 or 3", name, d.Path, len(field.Shape))
		}
		means[i] = nanMean(field.Elements)
	}
	return means, nil
}
