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

// Package era5util provides the command-line interface to the era5 package.
package era5util

import (
	"context"
	"fmt"
	"os"

	"github.com/ctessum/geom"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/era5"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(collectCmd)
	Root.AddCommand(selectCmd)
	Root.AddCommand(areaCmd)
	Root.AddCommand(levelsCmd)
	Root.AddCommand(timeseriesCmd)
	Root.AddCommand(crosssectionCmd)

	files := []*pflag.FlagSet{collectCmd.Flags(), selectCmd.Flags(), timeseriesCmd.Flags()}
	selecting := []*pflag.FlagSet{selectCmd.Flags(), timeseriesCmd.Flags()}
	area := []*pflag.FlagSet{areaCmd.Flags(), timeseriesCmd.Flags()}

	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel is the minimum level of log messages: debug, info,
              warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "root",
			usage: `
              root is the base directory of the ERA5 archive. Files are
              expected at root/YYYY/MM/ecmwf_era5_YYMMDDHH.nc.`,
			shorthand:  "r",
			defaultVal: DefaultRoot,
			flagsets:   files,
		},
		{
			name: "start",
			usage: `
              start is the first hour to collect, for example 2020-01-01T00.`,
			defaultVal: "",
			flagsets:   files,
		},
		{
			name: "end",
			usage: `
              end is the last hour to collect, inclusive.`,
			defaultVal: "",
			flagsets:   files,
		},
		{
			name: "display",
			usage: `
              display sets how files are shown: filename, date or path.`,
			shorthand:  "d",
			defaultVal: "filename",
			flagsets:   files,
		},
		{
			name: "workers",
			usage: `
              workers is the number of concurrent file checks. 0 uses one
              per processor.`,
			defaultVal: 0,
			flagsets:   files,
		},
		{
			name: "retries",
			usage: `
              retries is the number of times a failed file check is retried.`,
			defaultVal: 3,
			flagsets:   files,
		},
		{
			name: "plan",
			usage: `
              plan is a TOML file listing filters, removals and undo steps
              to apply to the collected files.`,
			shorthand:  "p",
			defaultVal: "",
			flagsets:   selecting,
		},
		{
			name: "area.left",
			usage: `
              area.left is the western edge of the area in degrees east.`,
			defaultVal: era5.DefaultArea.Left,
			flagsets:   area,
		},
		{
			name: "area.right",
			usage: `
              area.right is the eastern edge of the area in degrees east.`,
			defaultVal: era5.DefaultArea.Right,
			flagsets:   area,
		},
		{
			name: "area.top",
			usage: `
              area.top is the northern edge of the area in degrees north.`,
			defaultVal: era5.DefaultArea.Top,
			flagsets:   area,
		},
		{
			name: "area.bottom",
			usage: `
              area.bottom is the southern edge of the area in degrees north.`,
			defaultVal: era5.DefaultArea.Bottom,
			flagsets:   area,
		},
		{
			name: "levels",
			usage: `
              levels is a comma separated list of pressure levels in hPa.`,
			defaultVal: era5.DefaultLevels,
			flagsets:   []*pflag.FlagSet{levelsCmd.Flags(), timeseriesCmd.Flags(), crosssectionCmd.Flags()},
		},
		{
			name: "level",
			usage: `
              level is the pressure level in hPa that time series are
              computed at. It must be one of levels.`,
			defaultVal: era5.DefaultLevel,
			flagsets:   []*pflag.FlagSet{levelsCmd.Flags(), timeseriesCmd.Flags()},
		},
		{
			name: "variables",
			usage: `
              variables lists up to two variables to compute time series of.`,
			defaultVal: []string{"TEMP"},
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is an optional .xlsx file to save the time series to.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags()},
		},
		{
			name: "cachesize",
			usage: `
              cachesize is the number of per-file results kept in memory.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags()},
		},
		{
			name: "file",
			usage: `
              file is the NetCDF file to take the cross section from.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
		{
			name: "csec.variable",
			usage: `
              csec.variable is the variable to sample.`,
			defaultVal: "TEMP",
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
		{
			name: "csec.startlon",
			usage: `
              csec.startlon is the longitude of the first point.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
		{
			name: "csec.startlat",
			usage: `
              csec.startlat is the latitude of the first point.`,
			defaultVal: -45.0,
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
		{
			name: "csec.endlon",
			usage: `
              csec.endlon is the longitude of the last point.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
		{
			name: "csec.endlat",
			usage: `
              csec.endlat is the latitude of the last point.`,
			defaultVal: 45.0,
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
		{
			name: "csec.steps",
			usage: `
              csec.steps is the number of points along the section.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{crosssectionCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ERA5")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("era5: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "era5",
	Short: "Select and inspect ERA5 reanalysis files.",
	Long: `era5 collects the hourly ERA5 NetCDF files of a date range, thins the
selection with filters and computes time series and cross sections from it.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ERA5_var' where 'var' is the
name of the variable to be set.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setLogging(Cfg.GetString("loglevel"))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of era5.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("era5 v%s\n", era5.Version)
	},
	DisableAutoGenTag: true,
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "List the files of a date range.",
	Long: `collect lists the hourly files between --start and --end, inclusive,
that exist under --root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := Collect(context.Background(), Cfg)
		if err != nil {
			return err
		}
		format, err := displayFromConfig(Cfg)
		if err != nil {
			return err
		}
		printFiles(cmd.OutOrStdout(), files, format)
		return nil
	},
	DisableAutoGenTag: true,
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Collect files and apply a filter plan.",
	Long: `select collects the files of a date range and applies the filters,
removals and undo steps of the --plan file, then prints the remaining files
and the applied filters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, format, err := Select(context.Background(), Cfg)
		if err != nil {
			return err
		}
		return printSelection(cmd.OutOrStdout(), s, format)
	},
	DisableAutoGenTag: true,
}

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Show the grid indices of an area.",
	Long: `area checks the area given by --area.left, --area.right, --area.top and
--area.bottom and prints the index ranges it covers on the global 1° grid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := areaFromConfig(Cfg)
		if err != nil {
			return err
		}
		ai := a.Indices()
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, a)
		fmt.Fprintf(w, "latitude indices: [%d, %d)\n", ai.Lat.Start, ai.Lat.End)
		for _, r := range ai.Lon {
			fmt.Fprintf(w, "longitude indices: [%d, %d)\n", r.Start, r.End)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show the order of pressure levels.",
	Long: `levels parses --levels, prints them from the surface upwards and
prints the index of --level among the levels sorted from the top down.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, level, err := levelsFromConfig(Cfg)
		if err != nil {
			return err
		}
		i, _ := levels.IndexOf(level)
		fmt.Fprintln(cmd.OutOrStdout(), levels)
		fmt.Fprintf(cmd.OutOrStdout(), "index of %g %s: %d\n", level, levels.Unit(), i)
		return nil
	},
	DisableAutoGenTag: true,
}

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Compute area means over the selected files.",
	Long: `timeseries selects files as the select command does and computes the
mean of each of --variables over the area at pressure level --level for every
file. The result is printed and, if --output is set, saved as a spreadsheet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, means, err := Timeseries(context.Background(), Cfg)
		if err != nil {
			return err
		}
		if err := printMeans(cmd.OutOrStdout(), vars, means); err != nil {
			return err
		}
		if out := Cfg.GetString("output"); out != "" {
			return writeMeansXLSX(out, vars, means)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var crosssectionCmd = &cobra.Command{
	Use:   "crosssection",
	Short: "Sample a variable along a path.",
	Long: `crosssection interpolates --csec.variable of --file to --levels and
samples it at --csec.steps points between the start and end points.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, err := era5.ParseLevels(Cfg.GetString("levels"))
		if err != nil {
			return err
		}
		path := os.ExpandEnv(Cfg.GetString("file"))
		if path == "" {
			return &era5.ValidationError{Msg: "no file given for the cross section"}
		}
		d, err := era5.OpenDataset(afero.NewOsFs(), path)
		if err != nil {
			return err
		}
		defer d.Close()
		start := geom.Point{X: Cfg.GetFloat64("csec.startlon"), Y: Cfg.GetFloat64("csec.startlat")}
		end := geom.Point{X: Cfg.GetFloat64("csec.endlon"), Y: Cfg.GetFloat64("csec.endlat")}
		cs, pts, err := d.CrossSection(Cfg.GetString("csec.variable"), levels, start, end, Cfg.GetInt("csec.steps"))
		if err != nil {
			return err
		}
		return printCrossSection(cmd.OutOrStdout(), cs, pts, levels)
	},
	DisableAutoGenTag: true,
}

// Collect returns the files of the configured date range that exist under
// the configured root.
func Collect(ctx context.Context, cfg *viper.Viper) ([]era5.DatasetFile, error) {
	start, end, err := dateRange(cfg)
	if err != nil {
		return nil, err
	}
	c := era5.NewCollector(os.ExpandEnv(cfg.GetString("root")))
	c.Workers = cfg.GetInt("workers")
	retries, err := cast.ToUint64E(cfg.Get("retries"))
	if err != nil {
		return nil, fmt.Errorf("era5: reading retries: %v", err)
	}
	c.Retries = retries
	files, found, err := c.Collect(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if !found {
		logrus.WithFields(logrus.Fields{
			"root":  c.Root,
			"start": start.Format(era5.DateLayout),
			"end":   end.Format(era5.DateLayout),
		}).Warn("era5: no datasets found")
	}
	return files, nil
}

// Select collects files and applies the configured plan to them. It
// returns the selection and the display format.
func Select(ctx context.Context, cfg *viper.Viper) (*era5.Selection, era5.DisplayFormat, error) {
	format, err := displayFromConfig(cfg)
	if err != nil {
		return nil, format, err
	}
	var plan *Plan
	if path := cfg.GetString("plan"); path != "" {
		if plan, err = LoadPlan(path); err != nil {
			return nil, format, err
		}
	}
	files, err := Collect(ctx, cfg)
	if err != nil {
		return nil, format, err
	}
	s := era5.NewSelection(files)
	if plan == nil {
		return s, format, nil
	}
	if plan.Display == "" {
		plan.Display = format.String()
	}
	format, err = plan.Apply(s, logrus.StandardLogger())
	return s, format, err
}

// Timeseries selects files and computes the area means of the configured
// variables. It returns the variables and one result per selected file.
func Timeseries(ctx context.Context, cfg *viper.Viper) ([]string, []era5.AreaMean, error) {
	vars, err := variablesFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	ts := era5.NewTimeseries()
	ts.CacheSize = cfg.GetInt("cachesize")
	if err := ts.SetVariables(vars...); err != nil {
		return nil, nil, err
	}
	a, err := areaFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	levels, level, err := levelsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, _, err := Select(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	means, err := ts.AreaMeans(ctx, s.Datasets(), a, levels, level)
	if err != nil {
		return nil, nil, err
	}
	return ts.Variables(), means, nil
}
