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
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/era5"
	"github.com/spf13/cast"
)

// DefaultRoot is the location of the ERA5 archive on the JSC file systems.
const DefaultRoot = "/p/fastdata/slmet/slmet111/met_data/ecmwf/era5/nc"

// dateLayouts are the accepted layouts of --start and --end.
var dateLayouts = []string{
	"2006-01-02T15",
	"2006-01-02T15:04",
	time.RFC3339,
	era5.DateLayout,
	"2006-01-02",
}

// parseDate parses s as a UTC date in one of dateLayouts.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q does not match any of %s", s, strings.Join(dateLayouts, ", "))
}

// dateRange reads and checks the start and end dates.
func dateRange(cfg *viper.Viper) (start, end time.Time, err error) {
	s := strings.TrimSpace(os.ExpandEnv(cfg.GetString("start")))
	e := strings.TrimSpace(os.ExpandEnv(cfg.GetString("end")))
	switch {
	case s == "" && e == "":
		return start, end, &era5.ValidationError{Msg: "start and end dates are not set"}
	case s == "":
		return start, end, &era5.ValidationError{Msg: "start date is not set"}
	case e == "":
		return start, end, &era5.ValidationError{Msg: "end date is not set"}
	}
	if start, err = parseDate(s); err != nil {
		return start, end, &era5.ValidationError{Msg: "start date: " + err.Error()}
	}
	if end, err = parseDate(e); err != nil {
		return start, end, &era5.ValidationError{Msg: "end date: " + err.Error()}
	}
	if start.After(end) {
		return start, end, &era5.ValidationError{Msg: "start date has to be previous to end date"}
	}
	return start, end, nil
}

// areaFromConfig reads and validates the area.* options.
func areaFromConfig(cfg *viper.Viper) (era5.Area, error) {
	var a era5.Area
	for _, o := range []struct {
		name string
		v    *int
	}{
		{"area.left", &a.Left},
		{"area.right", &a.Right},
		{"area.top", &a.Top},
		{"area.bottom", &a.Bottom},
	} {
		v, err := cast.ToIntE(cfg.Get(o.name))
		if err != nil {
			return a, fmt.Errorf("era5: reading %s: %v", o.name, err)
		}
		*o.v = v
	}
	return a, a.Validate()
}

// levelsFromConfig reads the pressure levels and the selected level.
func levelsFromConfig(cfg *viper.Viper) (era5.Levels, float64, error) {
	levels, err := era5.ParseLevels(cfg.GetString("levels"))
	if err != nil {
		return levels, 0, err
	}
	level, err := cast.ToFloat64E(cfg.Get("level"))
	if err != nil {
		return levels, 0, fmt.Errorf("era5: reading level: %v", err)
	}
	if _, err := levels.IndexOf(level); err != nil {
		return levels, 0, err
	}
	return levels, level, nil
}

// variablesFromConfig reads the variable list. Entries may themselves be
// comma separated.
func variablesFromConfig(cfg *viper.Viper) ([]string, error) {
	raw, err := cast.ToStringSliceE(cfg.Get("variables"))
	if err != nil {
		return nil, fmt.Errorf("era5: reading variables: %v", err)
	}
	var vars []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vars = append(vars, v)
			}
		}
	}
	return vars, nil
}

// displayFromConfig reads the display format.
func displayFromConfig(cfg *viper.Viper) (era5.DisplayFormat, error) {
	return era5.ParseDisplayFormat(cfg.GetString("display"))
}

// setLogging sets the level and format of the standard logger.
func setLogging(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("era5: log level: %v", err)
	}
	logrus.SetLevel(l)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	return nil
}
