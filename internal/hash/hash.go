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

// Package hash builds cache keys for request payloads.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a hex key identifying the given parts, in order. Parts that
// gob cannot encode, such as structs without exported fields, are dumped
// with spew instead.
func Key(parts ...interface{}) string {
	h := fnv.New128a()
	for _, p := range parts {
		write(h, p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func write(h hash.Hash, part interface{}) {
	switch v := part.(type) {
	case string:
		fmt.Fprintf(h, "s%d:%s;", len(v), v)
		return
	case fmt.Stringer:
		s := v.String()
		fmt.Fprintf(h, "S%d:%s;", len(s), s)
		return
	}
	if err := gob.NewEncoder(h).Encode(part); err == nil {
		return
	}
	printer.Fprintf(h, "%#v;", part)
}
