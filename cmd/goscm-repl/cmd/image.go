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
	"os"

	"github.com/launix-de/goscm/scm"
)

func openImageForRead(path string) (*os.File, error) {
	return os.Open(path)
}

func saveImage(interp *scm.Interpreter, path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not save image:", err)
		return
	}
	defer f.Close()
	if err := interp.SaveImage(f); err != nil {
		fmt.Fprintln(os.Stderr, "could not save image:", err)
	}
}
