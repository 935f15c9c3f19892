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

// Interpreter bundles the global environment with the resource ceilings
// new VMs are created with, the same "one facade per running process"
// shape as the teacher's scm.Init/scm.Eval pair in scm/scm.go, folded
// into a single value instead of package-level globals so cmd/goscm-repl
// and cmd/goscm-server can each own an independent instance
// (cmd/goscm-server shares one instance across all connections and
// isolates each connection in a Session — see session.go).
type Interpreter struct {
	Global *Environment
	Opts   Options
}

// NewInterpreter builds a fresh global environment with every special
// form and builtin category registered, mirroring the teacher's
// scm.Init() registering its own init_* functions from scm/declare.go.
func NewInterpreter(opts Options) *Interpreter {
	global := NewEnvironment(nil)
	initSpecialForms(global)
	init_arith(global)
	init_list(global)
	init_string(global)
	init_equality(global)
	init_pred(global)
	init_hash(global)
	return &Interpreter{Global: global, Opts: opts}
}

// Run evaluates a single already-parsed form against the interpreter's
// global environment, using a fresh VM per call — spec.md's VM is
// cheap value-stack/frame-stack state, not a long-lived resource, so a
// new one per top-level form (the same granularity the teacher's REPL
// evaluates at) keeps one form's resource ceiling from bleeding into
// the next. A Go-level panic during evaluation is recovered here and
// returned as an Internal RuntimeError.
func (in *Interpreter) Run(form Datum) (result Datum, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = Datum{}, NewError(Internal, "recovered panic: %v", r)
		}
	}()
	vm := NewVM(in.Opts)
	return vm.Run(form, in.Global)
}

// RunAll evaluates forms in sequence against the shared global
// environment, returning the last value (or unspecified for an empty
// program) and stopping at the first error — batch-file execution for
// cmd/goscm-repl's `run` subcommand.
func (in *Interpreter) RunAll(forms []Datum) (Datum, error) {
	result := EmptyList()
	for _, f := range forms {
		v, err := in.Run(f)
		if err != nil {
			return Datum{}, err
		}
		result = v
	}
	return result, nil
}
