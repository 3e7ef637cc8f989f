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
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/era5"
	"github.com/tealeg/xlsx"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// printFiles writes one file per line in the given format.
func printFiles(w io.Writer, files []era5.DatasetFile, format era5.DisplayFormat) {
	for _, f := range files {
		fmt.Fprintln(w, f.Format(format))
	}
}

// printSelection writes the selected files followed by the applied filters
// and the number of files each one removed.
func printSelection(w io.Writer, s *era5.Selection, format era5.DisplayFormat) error {
	fmt.Fprintf(w, "Datasets (%d):\n", s.Len())
	for _, name := range s.Render(format) {
		fmt.Fprintln(w, name)
	}
	filters := s.Filters()
	if len(filters) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nFilters (%d):\n", len(filters))
	tw := newTable(w)
	fmt.Fprintln(tw, "Filter\tRemoved")
	for _, f := range filters {
		fmt.Fprintf(tw, "%s\t%d\n", f.Description, len(f.Files))
	}
	return tw.Flush()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// printMeans writes the area means as a table with one row per file.
func printMeans(w io.Writer, vars []string, means []era5.AreaMean) error {
	tw := newTable(w)
	fmt.Fprint(tw, "Date")
	for _, v := range vars {
		fmt.Fprintf(tw, "\t%s", v)
	}
	fmt.Fprintln(tw)
	for _, m := range means {
		fmt.Fprint(tw, m.Time.Format(era5.DateLayout))
		for _, v := range m.Means {
			fmt.Fprintf(tw, "\t%s", formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// writeMeansXLSX saves the area means to a spreadsheet at path.
func writeMeansXLSX(path string, vars []string, means []era5.AreaMean) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Area means")
	if err != nil {
		return fmt.Errorf("era5: creating spreadsheet: %v", err)
	}
	row := sheet.AddRow()
	for _, h := range append([]string{"Date", "Path"}, vars...) {
		row.AddCell().SetString(h)
	}
	for _, m := range means {
		row = sheet.AddRow()
		row.AddCell().SetString(m.Time.Format(era5.DateLayout))
		row.AddCell().SetString(m.Path)
		for _, v := range m.Means {
			c := row.AddCell()
			if math.IsNaN(v) {
				c.SetString("")
				continue
			}
			c.SetFloat(v)
		}
	}
	if err := f.Save(os.ExpandEnv(path)); err != nil {
		return fmt.Errorf("era5: saving spreadsheet: %v", err)
	}
	return nil
}

// printCrossSection writes a cross section with one row per level and one
// column per path point.
func printCrossSection(w io.Writer, cs *sparse.DenseArray, pts []geom.Point, levels era5.Levels) error {
	tw := newTable(w)
	fmt.Fprint(tw, "hPa")
	for _, p := range pts {
		fmt.Fprintf(tw, "\t%.2f/%.2f", p.X, p.Y)
	}
	fmt.Fprintln(tw)
	for k, l := range levels.Ascending() {
		fmt.Fprint(tw, strconv.FormatFloat(l, 'g', -1, 64))
		for i := range pts {
			fmt.Fprintf(tw, "\t%s", formatValue(cs.Get(k, i)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
