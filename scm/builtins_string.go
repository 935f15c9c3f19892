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
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// init_string registers the string primitives, grounded on the
// teacher's scm/strings.go Declare-per-function layout (concat, strlen,
// toLower/toUpper, split). string-upcase/string-downcase/string-ci=?
// go through golang.org/x/text/cases instead of strings.ToUpper/ToLower
// since the teacher already depends on x/text for locale-aware casing.
func init_string(env *Environment) {
	DeclareTitle("Strings")

	Declare(env, &Declaration{
		"string-append", "concatenates strings",
		0, -1,
		[]DeclarationParameter{{"value...", "string", ""}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			var b strings.Builder
			for _, v := range a {
				s, err := asString("string-append", v)
				if err != nil {
					return Datum{}, err
				}
				b.WriteString(s)
			}
			return NewString(b.String()), nil
		},
	})
	Declare(env, &Declaration{
		"string-length", "number of characters in a string",
		1, 1,
		[]DeclarationParameter{{"value", "string", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string-length", a[0])
			if err != nil {
				return Datum{}, err
			}
			return NewInteger(int64(len([]rune(s)))), nil
		},
	})
	Declare(env, &Declaration{
		"string-upcase", "uppercases a string",
		1, 1,
		[]DeclarationParameter{{"value", "string", ""}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string-upcase", a[0])
			if err != nil {
				return Datum{}, err
			}
			return NewString(cases.Upper(language.Und).String(s)), nil
		},
	})
	Declare(env, &Declaration{
		"string-downcase", "lowercases a string",
		1, 1,
		[]DeclarationParameter{{"value", "string", ""}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string-downcase", a[0])
			if err != nil {
				return Datum{}, err
			}
			return NewString(cases.Lower(language.Und).String(s)), nil
		},
	})
	Declare(env, &Declaration{
		"string-ci=?", "case-insensitive string equality",
		2, 2,
		[]DeclarationParameter{{"a", "string", ""}, {"b", "string", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) {
			x, err := asString("string-ci=?", a[0])
			if err != nil {
				return Datum{}, err
			}
			y, err := asString("string-ci=?", a[1])
			if err != nil {
				return Datum{}, err
			}
			fold := cases.Fold()
			return NewBoolean(fold.String(x) == fold.String(y)), nil
		},
	})
	Declare(env, &Declaration{
		"string=?", "string equality",
		2, 2,
		[]DeclarationParameter{{"a", "string", ""}, {"b", "string", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) {
			x, err := asString("string=?", a[0])
			if err != nil {
				return Datum{}, err
			}
			y, err := asString("string=?", a[1])
			if err != nil {
				return Datum{}, err
			}
			return NewBoolean(x == y), nil
		},
	})
	Declare(env, &Declaration{
		"substring", "returns the substring from start (inclusive) to end (exclusive, defaults to the string's length)",
		2, 3,
		[]DeclarationParameter{{"value", "string", ""}, {"start", "integer", ""}, {"end", "integer", "optional"}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("substring", a[0])
			if err != nil {
				return Datum{}, err
			}
			runes := []rune(s)
			start, err := asInteger("substring", a[1])
			if err != nil {
				return Datum{}, err
			}
			end := int64(len(runes))
			if len(a) == 3 {
				end, err = asInteger("substring", a[2])
				if err != nil {
					return Datum{}, err
				}
			}
			if start < 0 || end < start || end > int64(len(runes)) {
				return Datum{}, NewError(DomainError, "substring: index out of range")
			}
			return NewString(string(runes[start:end])), nil
		},
	})
	Declare(env, &Declaration{
		"string-contains", "returns the index of needle in haystack, or #f if absent",
		2, 2,
		[]DeclarationParameter{{"haystack", "string", ""}, {"needle", "string", ""}}, "any",
		func(vm *VM, a []Datum) (Datum, error) {
			hs, err := asString("string-contains", a[0])
			if err != nil {
				return Datum{}, err
			}
			needle, err := asString("string-contains", a[1])
			if err != nil {
				return Datum{}, err
			}
			idx := strings.Index(hs, needle)
			if idx < 0 {
				return NewBoolean(false), nil
			}
			return NewInteger(int64(len([]rune(hs[:idx])))), nil
		},
	})
	Declare(env, &Declaration{
		"string-prefix?", "is prefix a leading substring of value?",
		2, 2,
		[]DeclarationParameter{{"prefix", "string", ""}, {"value", "string", ""}}, "boolean",
		func(vm *VM, a []Datum) (Datum, error) {
			prefix, err := asString("string-prefix?", a[0])
			if err != nil {
				return Datum{}, err
			}
			s, err := asString("string-prefix?", a[1])
			if err != nil {
				return Datum{}, err
			}
			return NewBoolean(strings.HasPrefix(s, prefix)), nil
		},
	})
	Declare(env, &Declaration{
		"string->list", "explodes a string into a list of characters",
		1, 1,
		[]DeclarationParameter{{"value", "string", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string->list", a[0])
			if err != nil {
				return Datum{}, err
			}
			runes := []rune(s)
			out := make([]Datum, len(runes))
			for i, r := range runes {
				out[i] = NewCharacter(r)
			}
			return SliceToList(out), nil
		},
	})
	Declare(env, &Declaration{
		"list->string", "builds a string from a list of characters",
		1, 1,
		[]DeclarationParameter{{"value", "list", ""}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			items, ok := ListToSlice(a[0])
			if !ok {
				return Datum{}, typeError("list->string", "list", a[0])
			}
			var b strings.Builder
			for _, it := range items {
				if it.Kind != KindCharacter {
					return Datum{}, typeError("list->string", "character", it)
				}
				b.WriteRune(it.Char)
			}
			return NewString(b.String()), nil
		},
	})
	Declare(env, &Declaration{
		"string-split", "splits a string on every occurrence of sep",
		2, 2,
		[]DeclarationParameter{{"value", "string", ""}, {"sep", "string", ""}}, "list",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string-split", a[0])
			if err != nil {
				return Datum{}, err
			}
			sep, err := asString("string-split", a[1])
			if err != nil {
				return Datum{}, err
			}
			parts := strings.Split(s, sep)
			out := make([]Datum, len(parts))
			for i, p := range parts {
				out[i] = NewString(p)
			}
			return SliceToList(out), nil
		},
	})
	Declare(env, &Declaration{
		"string->number", "parses a string as a base-10 integer",
		1, 1,
		[]DeclarationParameter{{"value", "string", ""}}, "integer",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string->number", a[0])
			if err != nil {
				return Datum{}, err
			}
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return Datum{}, NewError(DomainError, "string->number: %q is not an integer", s)
			}
			return NewInteger(n), nil
		},
	})
	Declare(env, &Declaration{
		"number->string", "renders an integer as a base-10 string",
		1, 1,
		[]DeclarationParameter{{"value", "integer", ""}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			n, err := asInteger("number->string", a[0])
			if err != nil {
				return Datum{}, err
			}
			return NewString(strconv.FormatInt(n, 10)), nil
		},
	})
	Declare(env, &Declaration{
		"symbol->string", "renders a symbol as a string",
		1, 1,
		[]DeclarationParameter{{"value", "symbol", ""}}, "string",
		func(vm *VM, a []Datum) (Datum, error) {
			if a[0].Kind != KindSymbol {
				return Datum{}, typeError("symbol->string", "symbol", a[0])
			}
			return NewString(string(a[0].Sym)), nil
		},
	})
	Declare(env, &Declaration{
		"string->symbol", "interns a string as a symbol",
		1, 1,
		[]DeclarationParameter{{"value", "string", ""}}, "symbol",
		func(vm *VM, a []Datum) (Datum, error) {
			s, err := asString("string->symbol", a[0])
			if err != nil {
				return Datum{}, err
			}
			return NewSymbol(Symbol(s)), nil
		},
	})
}

func asString(ctx string, d Datum) (string, error) {
	if d.Kind != KindString {
		return "", typeError(ctx, "string", d)
	}
	return d.Str, nil
}
