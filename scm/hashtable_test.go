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

import "testing"

// call builds (fn args...) as a Datum form, so tests can drive the
// evaluator without depending on package reader.
func call(fn string, args ...Datum) Datum {
	return NewPair(NewSymbol(Symbol(fn)), SliceToList(args))
}

func TestHashSetRefRemoveCount(t *testing.T) {
	interp := NewInterpreter(Options{})
	run := func(form Datum) Datum {
		t.Helper()
		v, err := interp.Run(form)
		if err != nil {
			t.Fatalf("Run(%s): %v", Display(form), err)
		}
		return v
	}

	run(call("define", NewSymbol("h"), call("make-hash-table")))
	run(call("hash-set!", NewSymbol("h"), NewSymbol("k"), NewInteger(42)))

	got := run(call("hash-ref", NewSymbol("h"), NewSymbol("k")))
	if got.Kind != KindInteger || got.Int != 42 {
		t.Fatalf("hash-ref: got %s, want 42", Display(got))
	}

	missing := run(call("hash-ref", NewSymbol("h"), NewSymbol("missing")))
	if missing.Kind != KindBoolean || missing.Bool != false {
		t.Fatalf("hash-ref on missing key: got %s, want #f", Display(missing))
	}

	run(call("hash-remove!", NewSymbol("h"), NewSymbol("k")))
	afterRemove := run(call("hash-ref", NewSymbol("h"), NewSymbol("k")))
	if afterRemove.Bool != false {
		t.Fatalf("hash-ref after remove: got %s, want #f", Display(afterRemove))
	}

	count := run(call("hash-count", NewSymbol("h")))
	if count.Kind != KindInteger || count.Int != 0 {
		t.Fatalf("hash-count after remove: got %s, want 0", Display(count))
	}
}

func TestHashRefOnUnhashableKeyReturnsFalse(t *testing.T) {
	interp := NewInterpreter(Options{})
	run := func(form Datum) Datum {
		t.Helper()
		v, err := interp.Run(form)
		if err != nil {
			t.Fatalf("Run(%s): %v", Display(form), err)
		}
		return v
	}
	run(call("define", NewSymbol("h"), call("make-hash-table")))
	run(call("define", NewSymbol("proc"), call("lambda", EmptyList())))

	got := run(call("hash-ref", NewSymbol("h"), NewSymbol("proc")))
	if got.Kind != KindBoolean || got.Bool != false {
		t.Fatalf("hash-ref on an unhashable key: got %s, want #f", Display(got))
	}
}

func TestHashSetOnUnhashableKeyRaisesUnsupportedKey(t *testing.T) {
	interp := NewInterpreter(Options{})
	_, err := interp.Run(call("define", NewSymbol("h"), call("make-hash-table")))
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	_, err = interp.Run(call("define", NewSymbol("proc"), call("lambda", EmptyList())))
	if err != nil {
		t.Fatalf("define proc: %v", err)
	}

	_, err = interp.Run(call("hash-set!", NewSymbol("h"), NewSymbol("proc"), NewInteger(1)))
	if err == nil {
		t.Fatal("expected an error for an unhashable hash-set! key")
	}
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rerr.Category != UnsupportedKey {
		t.Fatalf("expected UnsupportedKey category, got %v", rerr.Category)
	}
}
