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
	"strings"

	"github.com/fatih/color"
)

// Highlighter maps a slice of source text to its visually distinguished
// form. Implementations must return the input text decorated, never
// altered: stripping the decoration has to reproduce the input exactly.
type Highlighter func(string) string

// NoopHighlighter returns the text unchanged. Use it for tests and
// non-interactive output.
func NoopHighlighter(s string) string { return s }

// ColorHighlighter renders highlighted spans in bold red for terminal
// output.
func ColorHighlighter() Highlighter {
	paint := color.New(color.FgRed, color.Bold)
	return func(s string) string { return paint.Sprint(s) }
}

// Location formats the range as a compact label: file:line[start-end] for a
// single-line range, file:line[col]-line[col] otherwise.
func (r SourceRange) Location() string {
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%s:%d[%d-%d]", r.File, r.Start.Line, r.Start.Col, r.End.Col)
	}
	return fmt.Sprintf("%s:%d[%d]-%d[%d]", r.File, r.Start.Line, r.Start.Col, r.End.Line, r.End.Col)
}

// Excerpt renders the lines spanned by the range, highlighting the covered
// span and passing the surrounding text through unmodified. On a single
// line the [startCol, endCol) slice is highlighted; across lines the first
// line is highlighted from startCol, interior lines in full, and the last
// line up to endCol. Out-of-range lines and columns are clamped, so a range
// produced against stale sources degrades rather than panics.
func Excerpt(r SourceRange, lines []string, highlight Highlighter) string {
	if highlight == nil {
		highlight = NoopHighlighter
	}
	first, last := r.Start.Line, r.End.Line
	if first < 1 {
		first = 1
	}
	if last > len(lines) {
		last = len(lines)
	}
	if len(lines) == 0 || first > last {
		return ""
	}
	if first == last {
		line := lines[first-1]
		start := clampCol(line, r.Start.Col)
		end := clampCol(line, r.End.Col)
		if end < start {
			end = start
		}
		return line[:start] + highlight(line[start:end]) + line[end:]
	}
	var b strings.Builder
	for n := first; n <= last; n++ {
		line := lines[n-1]
		switch n {
		case first:
			start := clampCol(line, r.Start.Col)
			b.WriteString(line[:start])
			b.WriteString(highlight(line[start:]))
		case last:
			end := clampCol(line, r.End.Col)
			b.WriteString(highlight(line[:end]))
			b.WriteString(line[end:])
		default:
			b.WriteString(highlight(line))
		}
		if n != last {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clampCol(line string, col int) int {
	if col < 0 {
		return 0
	}
	if col > len(line) {
		return len(line)
	}
	return col
}
