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

// Command era5 is a command-line interface for selecting and inspecting
// ERA5 reanalysis files.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/era5/era5util"
)

func main() {
	if err := era5util.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
