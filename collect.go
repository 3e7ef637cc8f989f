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
	"runtime"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Collector finds the files of a date range that exist under Root.
type Collector struct {
	// Root is the base directory of the archive.
	Root string

	// Fs is the file system to look in. It defaults to the OS file system.
	Fs afero.Fs

	// Workers is the number of concurrent existence checks. Zero means
	// runtime.GOMAXPROCS(0).
	Workers int

	// Retries is the number of times a failing stat call is retried
	// before the file is considered missing.
	Retries uint64

	Log logrus.FieldLogger
}

// NewCollector returns a collector for the archive at root on the OS file
// system.
func NewCollector(root string) *Collector {
	return &Collector{
		Root:    root,
		Fs:      afero.NewOsFs(),
		Retries: 3,
		Log:     logrus.StandardLogger(),
	}
}

// Hours returns every whole hour from start to end, inclusive. A reversed
// range gives no hours.
func Hours(start, end time.Time) []time.Time {
	var out []time.Time
	for t := start; !t.After(end); t = t.Add(time.Hour) {
		out = append(out, t)
	}
	return out
}

// Collect returns the files between start and end, inclusive, that exist,
// in time order. found reports whether any file was found. The range is
// not validated; a reversed range yields no files.
func (c *Collector) Collect(ctx context.Context, start, end time.Time) (files []DatasetFile, found bool, err error) {
	fs := c.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	nprocs := c.Workers
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}

	hours := Hours(start, end)
	candidates := make([]DatasetFile, len(hours))
	for i, t := range hours {
		candidates[i] = FromTimestamp(c.Root, t)
	}
	exists := make([]bool, len(candidates))

	var g errgroup.Group
	g.SetLimit(nprocs)
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			exists[i] = c.exists(ctx, fs, log, candidates[i])
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	for i, ok := range exists {
		if ok {
			files = append(files, candidates[i])
		}
	}
	log.WithFields(logrus.Fields{
		"root":       c.Root,
		"start":      start.Format(DateLayout),
		"end":        end.Format(DateLayout),
		"candidates": len(candidates),
		"found":      len(files),
	}).Info("era5: collected datasets")
	return files, len(files) > 0, nil
}

// exists checks f, retrying stat errors other than a missing file.
func (c *Collector) exists(ctx context.Context, fs afero.Fs, log logrus.FieldLogger, f DatasetFile) bool {
	var ok bool
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	err := backoff.RetryNotify(
		func() error {
			var err error
			ok, err = f.Exists(fs)
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(b, c.Retries), ctx),
		func(err error, d time.Duration) {
			log.WithFields(logrus.Fields{"path": f.Path, "retry": d}).Debug(err)
		},
	)
	if err != nil {
		log.WithFields(logrus.Fields{"path": f.Path}).Warnf("era5: treating file as missing: %v", err)
		return false
	}
	return ok
}
