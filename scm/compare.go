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

// Eqv implements eqv?: identity for pairs/vectors/procedures/strings
// (pointer comparison — this is why Pair is a *Pair heap cell, see
// datum.go), value equality for booleans/integers/characters/symbols,
// per spec.md §3's identity invariant. No string identity is tracked in
// this Datum model (Str is a plain Go string, not a heap cell), so two
// separately-allocated strings are never eqv? to each other, even when
// both are empty.
func Eqv(a, b Datum) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBoolean:
		return a.Bool == b.Bool
	case KindInteger:
		return a.Int == b.Int
	case KindCharacter:
		return a.Char == b.Char
	case KindSymbol:
		return a.Sym == b.Sym
	case KindString:
		return false
	case KindEmptyList:
		return true
	case KindPair:
		return a.Pair == b.Pair
	case KindVector:
		return sameVectorBacking(a.Vec, b.Vec)
	case KindProcedure:
		return a.Proc == b.Proc
	case KindSyntaxRule:
		return a.Macro == b.Macro
	case KindExt:
		return a.Ext == b.Ext
	default:
		return false
	}
}

// sameVectorBacking is eqv?'s identity check for vectors: two non-empty
// vectors are eqv? when they have the same length and share the address
// of their first element. A zero-length vector has no element address
// to compare, so it is never eqv? to any vector, itself included.
func sameVectorBacking(a, b []Datum) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	return &a[0] == &b[0]
}

// Equal implements equal?: structural deep comparison. No cycle guard
// is implemented — spec.md §9 flags the reference implementation's own
// lack of cycle detection as a known hazard and asks that it be
// preserved rather than silently fixed (see DESIGN.md Open Question
// Decisions); a cyclic pair given to equal? will not terminate here
// either.
func Equal(a, b Datum) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPair:
		return Equal(a.Pair.Car, b.Pair.Car) && Equal(a.Pair.Cdr, b.Pair.Cdr)
	case KindVector:
		if len(a.Vec) != len(b.Vec) {
			return false
		}
		for i := range a.Vec {
			if !Equal(a.Vec[i], b.Vec[i]) {
				return false
			}
		}
		return true
	case KindString:
		return a.Str == b.Str
	default:
		return Eqv(a, b)
	}
}
