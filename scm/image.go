/*
Copyright (C) 2023  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// ReadFunc parses a block of source text into top-level Datums. It is
// satisfied by reader.ReadAll; plumbed in as a function value instead
// of an import so the scm package never depends on reader (reader
// already depends on scm for Datum), avoiding an import cycle.
type ReadFunc func(source, text string) ([]Datum, error)

// SaveImage writes every user-defined (non-builtin) global binding as a
// newline-delimited `(define name (quote value))` form, lz4-compressed
// (the quote makes lists and symbols load back as data), the
// same "diff against a base environment, emit define forms" idea as the
// teacher's scm/printer.go SerializeEx, repurposed from an internal
// debug dump into a public save/restore feature (SPEC_FULL.md §4.6).
//
// Only data values round-trip: a binding whose value is a procedure,
// syntax-rules transformer, or Ext is skipped, since Display's opaque
// #<procedure>/#<ext:...> forms don't reconstruct it.
func (in *Interpreter) SaveImage(w io.Writer) error {
	zw := lz4.NewWriter(w)
	defer zw.Close()
	bw := bufio.NewWriter(zw)
	defer bw.Flush()

	base := NewInterpreter(in.Opts).Global
	var writeErr error
	in.Global.Iter(func(name Symbol, value Datum) {
		if writeErr != nil {
			return
		}
		if _, isBuiltin := base.Vars[name]; isBuiltin {
			return
		}
		if !imageable(value) {
			return
		}
		_, writeErr = fmt.Fprintf(bw, "(define %s (quote %s))\n", string(name), Display(value))
	})
	if writeErr != nil {
		return writeErr
	}
	return bw.Flush()
}

// imageable reports whether value's printed form round-trips through
// the reader back into an equal? value — procedures, syntax rules and
// ext cells (hash tables included) do not.
func imageable(d Datum) bool {
	switch d.Kind {
	case KindProcedure, KindSyntaxRule, KindExt:
		return false
	case KindPair:
		return imageable(d.Pair.Car) && imageable(d.Pair.Cdr)
	case KindVector:
		for _, el := range d.Vec {
			if !imageable(el) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// LoadImage decompresses and replays a SaveImage stream through the
// interpreter's global environment using read, re-establishing every
// saved binding. read is injected by the caller (cmd/goscm-repl wires
// reader.ReadAll) to avoid an import cycle between scm and reader.
func (in *Interpreter) LoadImage(r io.Reader, read ReadFunc) error {
	zr := lz4.NewReader(r)
	data, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	forms, err := read("image", string(data))
	if err != nil {
		return err
	}
	_, err = in.RunAll(forms)
	return err
}
