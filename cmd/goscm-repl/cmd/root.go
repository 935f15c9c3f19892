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

// Package cmd holds the goscm-repl subcommands, structured after the
// dwscript example repo's cmd/dwscript/cmd package (one file per
// subcommand, a shared rootCmd registered from each file's init).
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is overwritten by -ldflags at release build time.
var Version = "0.1.0-dev"

var maxInstrFlag string
var maxStackFlag string

var rootCmd = &cobra.Command{
	Use:     "goscm-repl",
	Short:   "An interactive Scheme interpreter",
	Long:    `goscm-repl evaluates the small Scheme-family Lisp implemented in the scm package, interactively or from a file.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&maxInstrFlag, "max-instr", "", "abort a form after this many VM instructions (human size, e.g. 2M); empty means unbounded")
	rootCmd.PersistentFlags().StringVar(&maxStackFlag, "max-stack", "", "abort a form once its value stack exceeds this many entries (human size); empty means unbounded")
}
