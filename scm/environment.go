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

// Environment is a parent-linked scope, mirroring the teacher's own
// Env/Vars shape in scm/scm.go: a plain map plus a parent pointer,
// walked upward on lookup and on set!.
type Environment struct {
	Vars   map[Symbol]Datum
	Parent *Environment
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{Vars: make(map[Symbol]Datum), Parent: parent}
}

// Define binds name in THIS environment (shadowing any parent binding),
// matching spec.md §4.1: define always binds in the current frame.
func (e *Environment) Define(name Symbol, value Datum) {
	e.Vars[name] = value
}

// Get walks from this environment up through parents and returns the
// first binding found, or an Unbound RuntimeError.
func (e *Environment) Get(name Symbol) (Datum, error) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.Vars[name]; ok {
			return v, nil
		}
	}
	return Datum{}, unboundError(name)
}

// Set walks from this environment up through parents and mutates the
// nearest existing binding. It does not create a new binding — set!
// on an unbound name is an Unbound error, matching spec.md §4.3.
func (e *Environment) Set(name Symbol, value Datum) error {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.Vars[name]; ok {
			env.Vars[name] = value
			return nil
		}
	}
	return unboundError(name)
}

// Iter calls fn for every binding visible from e, innermost frame
// first, skipping names already seen in a more specific frame. It
// backs the image dump feature (image.go).
func (e *Environment) Iter(fn func(name Symbol, value Datum)) {
	seen := make(map[Symbol]bool)
	for env := e; env != nil; env = env.Parent {
		for k, v := range env.Vars {
			if !seen[k] {
				seen[k] = true
				fn(k, v)
			}
		}
	}
}

// Child creates a new environment whose parent is e — used by lambda
// application, letrec, and per-connection sessions (session.go).
func (e *Environment) Child() *Environment {
	return NewEnvironment(e)
}
