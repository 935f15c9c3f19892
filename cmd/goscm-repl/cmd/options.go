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
package cmd

import (
	"fmt"

	"github.com/docker/go-units"

	"github.com/launix-de/goscm/scm"
)

// vmOptions parses --max-instr/--max-stack into scm.Options, using
// docker/go-units' human-size parser (the teacher used the same
// package to parse storage buffer-pool sizes) so a size such as "2M" is
// accepted instead of spelled-out digits. RAMInBytes uses 1024-based
// multipliers, so "2M" means 2,097,152.
func vmOptions() (scm.Options, error) {
	var opts scm.Options
	if maxInstrFlag != "" {
		n, err := units.RAMInBytes(maxInstrFlag)
		if err != nil {
			return opts, fmt.Errorf("--max-instr: %w", err)
		}
		opts.MaxInstructions = int(n)
	}
	if maxStackFlag != "" {
		n, err := units.RAMInBytes(maxStackFlag)
		if err != nil {
			return opts, fmt.Errorf("--max-stack: %w", err)
		}
		opts.MaxValueStack = int(n)
	}
	return opts, nil
}
