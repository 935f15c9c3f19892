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
	"bytes"
	"testing"

	"github.com/launix-de/goscm/scm"
)

func evalText(t *testing.T, interp *scm.Interpreter, text string) scm.Datum {
	t.Helper()
	forms, err := ReadAll("test", text)
	if err != nil {
		t.Fatalf("ReadAll(%q): %v", text, err)
	}
	result, err := interp.RunAll(forms)
	if err != nil {
		t.Fatalf("RunAll(%q): %v", text, err)
	}
	return result
}

func TestEvalArithmeticAndDefine(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, "(define x (+ 1 2)) (* x x)")
	if want := "9"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalMyOrMacro(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `
		(define-syntax my-or
		  (syntax-rules ()
		    ((_) #f)
		    ((_ e) e)
		    ((_ e1 e2 ...) (let ((t e1)) (if t t (my-or e2 ...))))))
		(my-or #f #f 7)`)
	if want := "7"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalSwapMacro(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `
		(define-syntax swap!
		  (syntax-rules ()
		    ((_ a b) (let ((tmp a)) (set! a b) (set! b tmp)))))
		(define x 1)
		(define y 2)
		(swap! x y)
		(list x y)`)
	if want := "(2 1)"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

// TestEvalMacroHygieneProtectsFreeIdentifiers proves a macro's free
// template identifiers resolve to their definition-site bindings even
// when the call site has locally shadowed the same name: my-cons-pair
// closes over the top-level "cons" at define-syntax time, and a caller
// that rebinds "cons" to something else must not see that rebinding
// leak into the expansion.
func TestEvalMacroHygieneProtectsFreeIdentifiers(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `
		(define-syntax my-cons-pair
		  (syntax-rules ()
		    ((_ a b) (cons a b))))
		(let ((cons (lambda (x y) (list 'shadowed x y))))
		  (my-cons-pair 1 2))`)
	if want := "(1 . 2)"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalTailRecursionDoesNotOverflow(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `
		(define (count-to n acc)
		  (if (= n 0) acc (count-to (- n 1) (+ acc 1))))
		(count-to 200000 0)`)
	if want := "200000"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalMapFilterReduce(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `
		(reduce + 0 (filter (lambda (x) (> x 2)) (map (lambda (x) (+ x 1)) (list 1 2 3 4))))`)
	if want := "12"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalHashTableRoundTrip(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `
		(define h (make-hash-table))
		(hash-set! h 'a 1)
		(hash-set! h 'b 2)
		(hash-remove! h 'a)
		(list (hash-ref h 'a) (hash-ref h 'b) (hash-count h))`)
	if want := "(#f 2 1)"; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalStringPrimitives(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	got := evalText(t, interp, `(string-append (substring "hello world" 0 5) "!")`)
	if want := `"hello!"`; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}

func TestEvalRuntimeErrorOnUnboundVariable(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	forms, err := ReadAll("test", "(+ 1 nope)")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	_, err = interp.RunAll(forms)
	if err == nil {
		t.Fatal("expected an error for an unbound variable")
	}
	rerr, ok := err.(*scm.RuntimeError)
	if !ok {
		t.Fatalf("expected *scm.RuntimeError, got %T", err)
	}
	if rerr.Category != scm.Unbound {
		t.Fatalf("expected Unbound category, got %v", rerr.Category)
	}
}

func TestImageSaveLoadRoundTrip(t *testing.T) {
	interp := scm.NewInterpreter(scm.Options{})
	evalText(t, interp, `(define greeting "hello") (define answer 42)`)

	var buf bytes.Buffer
	if err := interp.SaveImage(&buf); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	loaded := scm.NewInterpreter(scm.Options{})
	if err := loaded.LoadImage(&buf, ReadAll); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	got := evalText(t, loaded, "(list greeting answer)")
	if want := `("hello" 42)`; scm.Display(got) != want {
		t.Fatalf("got %s, want %s", scm.Display(got), want)
	}
}
