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

// Package era5 selects, filters and reads hourly ERA5 reanalysis files
// stored as NetCDF under a root/YYYY/MM directory tree.
package era5

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Version is the version of this software.
const Version = "0.1.0"

const (
	filePrefix = "ecmwf_era5_"
	fileSuffix = ".nc"

	// DateLayout is the layout used to render file dates.
	DateLayout = "2006-01-02 15:04:05"
)

// DisplayFormat selects how a DatasetFile is rendered as text.
type DisplayFormat int

// Available display formats.
const (
	DisplayFilename DisplayFormat = iota
	DisplayDate
	DisplayPath
)

func (f DisplayFormat) String() string {
	switch f {
	case DisplayDate:
		return "date"
	case DisplayPath:
		return "path"
	default:
		return "filename"
	}
}

// ParseDisplayFormat returns the display format with the given name
// (filename, date or path), ignoring case.
func ParseDisplayFormat(s string) (DisplayFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "filename", "":
		return DisplayFilename, nil
	case "date":
		return DisplayDate, nil
	case "path":
		return DisplayPath, nil
	}
	return DisplayFilename, &FormatError{Input: s, Reason: "display format must be filename, date or path"}
}

// DatasetFile is a single hourly ERA5 file. Values are immutable; copies
// refer to the same file.
type DatasetFile struct {
	// Root is the base directory of the archive.
	Root string
	// Time is the date and hour of the file.
	Time time.Time
	// Filename is the base name of the file.
	Filename string
	// Path is the location of the file.
	Path string
}

// FromTimestamp returns the file holding the data for the hour containing t.
func FromTimestamp(root string, t time.Time) DatasetFile {
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	name := fmt.Sprintf("%s%02d%02d%02d%02d%s", filePrefix, t.Year()%100, int(t.Month()), t.Day(), t.Hour(), fileSuffix)
	return DatasetFile{
		Root:     root,
		Time:     t,
		Filename: name,
		Path:     filepath.Join(root, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), name),
	}
}

// FromPath parses the date of the file at path. Day and hour are taken from
// the file name, year and month from the nearest four and two digit
// directory names above it.
func FromPath(root, path string) (DatasetFile, error) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return DatasetFile{}, &ParseError{Path: path, Reason: fmt.Sprintf("file name must look like %sYYMMDDHH%s", filePrefix, fileSuffix)}
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(body) != 8 {
		return DatasetFile{}, &ParseError{Path: path, Reason: "date in file name must have 8 digits"}
	}
	day, err := strconv.Atoi(body[4:6])
	if err != nil {
		return DatasetFile{}, &ParseError{Path: path, Reason: "invalid day " + body[4:6]}
	}
	hour, err := strconv.Atoi(body[6:8])
	if err != nil {
		return DatasetFile{}, &ParseError{Path: path, Reason: "invalid hour " + body[6:8]}
	}

	year, month := -1, -1
	for dir := filepath.Dir(path); ; {
		base := filepath.Base(dir)
		if v, err := strconv.Atoi(base); err == nil {
			switch {
			case month < 0 && len(base) == 2:
				month = v
			case year < 0 && len(base) == 4:
				year = v
			}
		}
		if year >= 0 && month >= 0 {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return DatasetFile{}, &ParseError{Path: path, Reason: "no YYYY/MM directories found"}
		}
		dir = parent
	}

	t := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day || t.Hour() != hour {
		return DatasetFile{}, &ParseError{Path: path, Reason: fmt.Sprintf("%04d-%02d-%02d %02d:00 is not a valid date", year, month, day, hour)}
	}
	return DatasetFile{Root: root, Time: t, Filename: name, Path: path}, nil
}

// Exists reports whether the file is a regular file in fs. A missing file
// is not an error.
func (f DatasetFile) Exists(fs afero.Fs) (bool, error) {
	info, err := fs.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Key identifies the file independently of how it is displayed.
func (f DatasetFile) Key() string {
	return f.Root + "|" + f.Time.UTC().Format(time.RFC3339)
}

// Less orders files by time.
func (f DatasetFile) Less(g DatasetFile) bool { return f.Time.Before(g.Time) }

// Format renders the file in the given display format.
func (f DatasetFile) Format(d DisplayFormat) string {
	switch d {
	case DisplayDate:
		return f.Time.Format(DateLayout)
	case DisplayPath:
		return f.Path
	default:
		return f.Filename
	}
}

func (f DatasetFile) String() string { return f.Filename }
