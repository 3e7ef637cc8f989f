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

import "fmt"

// ParseError is returned when a file name or path does not follow the
// ERA5 naming convention.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("era5: cannot parse %q: %s", e.Path, e.Reason)
}

// FormatError is returned when user supplied text, such as a pressure level
// list or a regular expression, is malformed.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("era5: malformed input %q: %s", e.Input, e.Reason)
}

// ValidationError is returned when a request is well formed but cannot be
// carried out, for example a reversed date range or too many variables.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "era5: " + e.Msg }

func validationErrorf(format string, a ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}
