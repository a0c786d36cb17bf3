// Copyright 2026 The soltrace Authors
// This file is part of the soltrace library.
//
// The soltrace library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The soltrace library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the soltrace library. If not, see <http://www.gnu.org/licenses/>.

package soltrace

import (
	"fmt"
	"io"
)

// WriteTrace writes a formatted step sequence to the given writer.
func WriteTrace(writer io.Writer, steps []Step) {
	for _, step := range steps {
		fmt.Fprintf(writer, "%-16spc=%08d gas=%v cost=%v depth=%d", step.Op, step.Pc, step.Gas, step.GasCost, step.Depth)
		if step.Error != "" {
			fmt.Fprintf(writer, " ERROR: %v", step.Error)
		}
		fmt.Fprintln(writer)

		if step.Loc != "" {
			fmt.Fprintln(writer, step.Loc)
			fmt.Fprintln(writer, step.Source)
		}
		for _, note := range step.Notes {
			fmt.Fprintf(writer, "  %s\n", note)
		}
		if len(step.Stack) > 0 {
			fmt.Fprintln(writer, "Stack:")
			for i := len(step.Stack) - 1; i >= 0; i-- {
				fmt.Fprintf(writer, "%08d  %s\n", len(step.Stack)-i-1, step.Stack[i])
			}
		}
		if len(step.Memory) > 0 {
			fmt.Fprintln(writer, "Memory:")
			for i, word := range step.Memory {
				fmt.Fprintf(writer, "%08x  %s\n", i*32, word)
			}
		}
		if len(step.Storage) > 0 {
			fmt.Fprintln(writer, "Storage:")
			for key, value := range step.Storage {
				fmt.Fprintf(writer, "%s: %s\n", key, value)
			}
		}
		fmt.Fprintln(writer)
	}
}
