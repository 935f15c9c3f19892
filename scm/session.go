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

import "github.com/google/uuid"

// Session isolates one network-console connection's defines from every
// other connection's, grounded on the teacher's own scm/session.go
// uuid-per-connection shape; what changed is the payload each session
// wraps (a SQL transaction context in the teacher, a plain child
// Environment here).
type Session struct {
	ID     uuid.UUID
	Env    *Environment
	Opts   Options
}

// NewSession creates a session whose environment is a child of global,
// so it sees every existing global binding but its own top-level
// defines don't leak back out (spec.md §4.1's shadow-in-current-frame
// rule applied at the connection granularity).
func NewSession(global *Environment, opts Options) *Session {
	return &Session{
		ID:   uuid.New(),
		Env:  global.Child(),
		Opts: opts,
	}
}

// Run evaluates form against this session's environment with a fresh
// per-call VM, the same per-form VM granularity Interpreter.Run uses.
func (s *Session) Run(form Datum) (Datum, error) {
	vm := NewVM(s.Opts)
	return vm.Run(form, s.Env)
}
