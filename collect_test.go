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
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func testCollector(fs afero.Fs) *Collector {
	log := logrus.New()
	log.Out = os.Stderr
	log.Level = logrus.WarnLevel
	return &Collector{Root: "/data", Fs: fs, Workers: 3, Retries: 1, Log: log}
}

func touch(t *testing.T, fs afero.Fs, files ...DatasetFile) {
	for _, f := range files {
		if err := afero.WriteFile(fs, f.Path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestHours(t *testing.T) {
	if have := len(Hours(jan1, jan1.Add(23*time.Hour))); have != 24 {
		t.Errorf("have %d hours, want 24", have)
	}
	if have := len(Hours(jan1, jan1)); have != 1 {
		t.Errorf("have %d hours, want 1", have)
	}
	if have := Hours(jan1.Add(time.Hour), jan1); len(have) != 0 {
		t.Errorf("reversed range gave %d hours", len(have))
	}
}

func TestCollect(t *testing.T) {
	fs := afero.NewMemMapFs()
	all := hourly("/data", time.Date(2019, 12, 31, 20, 0, 0, 0, time.UTC), 10)
	touch(t, fs, all[0], all[3], all[4], all[9])
	// A directory with a file's name does not count.
	if err := fs.MkdirAll(all[5].Path, 0755); err != nil {
		t.Fatal(err)
	}

	files, found, err := testCollector(fs).Collect(context.Background(), all[0].Time, all[9].Time)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("found should be true")
	}
	want := []DatasetFile{all[0], all[3], all[4], all[9]}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("have %v, want %v", files, want)
	}
}

func TestCollectNone(t *testing.T) {
	files, found, err := testCollector(afero.NewMemMapFs()).Collect(context.Background(), jan1, jan1.Add(5*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if found || len(files) != 0 {
		t.Errorf("found %v, files %v", found, files)
	}
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := testCollector(afero.NewMemMapFs()).Collect(ctx, jan1, jan1.Add(100*time.Hour))
	if err != context.Canceled {
		t.Errorf("have %v, want context.Canceled", err)
	}
}

// Collect the first four hours of 2020 when only hours 00 and 02 exist,
// thin them with a frequency filter and then drop the filter again.
func TestCollectAndFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	all := hourly("/data", jan1, 4)
	touch(t, fs, all[0], all[2])

	files, found, err := testCollector(fs).Collect(context.Background(), jan1, jan1.Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !found || len(files) != 2 {
		t.Fatalf("found %v, %d files", found, len(files))
	}
	if files[0].Filename != "ecmwf_era5_20010100.nc" || files[1].Filename != "ecmwf_era5_20010102.nc" {
		t.Errorf("unexpected files %v", files)
	}

	s := NewSelection(files)
	f, _ := NewFrequencyFilter(2)
	if !s.ApplyFilter(f) {
		t.Fatal("filter removed nothing")
	}
	if s.Len() != 1 {
		t.Errorf("%d files left, want 1", s.Len())
	}
	filters := s.Filters()
	if len(filters) != 1 || filters[0].Description != "Every 2nd (0)" {
		t.Fatalf("filters: %v", filters)
	}
	s.RemoveFilters("Every 2nd (0)")
	if !reflect.DeepEqual(s.Datasets(), files) {
		t.Errorf("have %v, want %v", s.Datasets(), files)
	}
}
