/*
Copyright (C) 2023  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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
	"io"

	"github.com/chzyer/readline"
	"github.com/dc0d/onexit"
	"github.com/spf13/cobra"

	"github.com/launix-de/goscm/reader"
	"github.com/launix-de/goscm/scm"
)

const newprompt = "\033[32m>\033[0m "
const contprompt = "\033[32m.\033[0m "
const resultprompt = "\033[31m=\033[0m "

var imageFlag string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Scheme prompt",
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&imageFlag, "image", "", "load and save session state to this image file")
}

func runRepl(cmd *cobra.Command, args []string) error {
	opts, err := vmOptions()
	if err != nil {
		return err
	}
	interp := scm.NewInterpreter(opts)

	if imageFlag != "" {
		if f, err := openImageForRead(imageFlag); err == nil {
			defer f.Close()
			if err := interp.LoadImage(f, reader.ReadAll); err != nil {
				fmt.Println("could not load image:", err)
			}
		}
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".goscm-repl-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	if imageFlag != "" {
		onexit.Register(func() { saveImage(interp, imageFlag) })
		defer saveImage(interp, imageFlag)
	}

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		forms, perr := reader.ReadAll("repl", line)
		if perr != nil {
			oldline = line + "\n"
			l.SetPrompt(contprompt)
			continue
		}
		oldline = ""
		l.SetPrompt(newprompt)

		result, err := interp.RunAll(forms)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Print(resultprompt)
		fmt.Println(scm.Display(result))
	}
	return nil
}
