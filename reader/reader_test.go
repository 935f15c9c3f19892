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
package reader

import (
	"testing"

	"github.com/launix-de/goscm/scm"
)

func readOne(t *testing.T, text string) scm.Datum {
	t.Helper()
	forms, err := ReadAll("test", text)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", text, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadAll(%q): expected 1 form, got %d", text, len(forms))
	}
	return forms[0]
}

func TestReadAtoms(t *testing.T) {
	cases := map[string]string{
		"42":        "42",
		"-7":        "-7",
		"#t":        "#t",
		"#f":        "#f",
		"foo":       "foo",
		`"hi"`:      `"hi"`,
		`"a\nb"`:    `"a\nb"`,
		"#\\a":      "#\\a",
		"#\\space":  "#\\space",
		"#\\newline": "#\\newline",
	}
	for in, want := range cases {
		got := scm.Display(readOne(t, in))
		if got != want {
			t.Errorf("ReadAll(%q) displayed as %q, want %q", in, got, want)
		}
	}
}

func TestReadList(t *testing.T) {
	d := readOne(t, "(1 2 3)")
	if got, want := scm.Display(d), "(1 2 3)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadDottedList(t *testing.T) {
	d := readOne(t, "(1 2 . 3)")
	if got, want := scm.Display(d), "(1 2 . 3)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadNestedList(t *testing.T) {
	d := readOne(t, "(+ 1 (* 2 3))")
	if got, want := scm.Display(d), "(+ 1 (* 2 3))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadVector(t *testing.T) {
	d := readOne(t, "#(1 2 3)")
	if got, want := scm.Display(d), "#(1 2 3)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadQuote(t *testing.T) {
	d := readOne(t, "'(a b)")
	if got, want := scm.Display(d), "(quote (a b))"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	forms, err := ReadAll("test", "1 2 3")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(forms) != 3 {
		t.Fatalf("expected 3 forms, got %d", len(forms))
	}
}

func TestReadSkipsComments(t *testing.T) {
	forms, err := ReadAll("test", "/* a comment */ 42")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(forms) != 1 || scm.Display(forms[0]) != "42" {
		t.Fatalf("unexpected forms: %v", forms)
	}
}
