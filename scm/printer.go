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
	"fmt"
	"strconv"
	"strings"
)

// Display renders d the way the REPL prints results, grounded on the
// teacher's scm/printer.go String()/SerializeEx quoting conventions.
func Display(d Datum) string {
	var b strings.Builder
	display(&b, d)
	return b.String()
}

func display(b *strings.Builder, d Datum) {
	switch d.Kind {
	case KindBoolean:
		if d.Bool {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case KindInteger:
		b.WriteString(strconv.FormatInt(d.Int, 10))
	case KindCharacter:
		b.WriteString(displayChar(d.Char))
	case KindSymbol:
		b.WriteString(string(d.Sym))
	case KindString:
		b.WriteString(strconv.Quote(d.Str))
	case KindEmptyList:
		b.WriteString("()")
	case KindPair:
		displayPair(b, d)
	case KindVector:
		b.WriteString("#(")
		for i, el := range d.Vec {
			if i > 0 {
				b.WriteByte(' ')
			}
			display(b, el)
		}
		b.WriteByte(')')
	case KindProcedure:
		displayProcedure(b, d.Proc)
	case KindSyntaxRule:
		b.WriteString("#<syntax-rules>")
	case KindExt:
		fmt.Fprintf(b, "#<ext:%s>", d.Ext.Tag)
	}
}

func displayChar(c rune) string {
	switch c {
	case ' ':
		return "#\\space"
	case '\n':
		return "#\\newline"
	case '\t':
		return "#\\tab"
	default:
		return "#\\" + string(c)
	}
}

func displayPair(b *strings.Builder, d Datum) {
	b.WriteByte('(')
	display(b, d.Pair.Car)
	rest := d.Pair.Cdr
	for rest.Kind == KindPair {
		b.WriteByte(' ')
		display(b, rest.Pair.Car)
		rest = rest.Pair.Cdr
	}
	if rest.Kind != KindEmptyList {
		b.WriteString(" . ")
		display(b, rest)
	}
	b.WriteByte(')')
}

// displayProcedure prints every procedure kind — native, special form or
// Scheme closure — as the same opaque "#<procedure>": spec.md §6 leaks
// no name or kind detail through the printed representation.
func displayProcedure(b *strings.Builder, p *Procedure) {
	b.WriteString("#<procedure>")
}
