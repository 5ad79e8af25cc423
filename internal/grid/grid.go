// Package grid holds the parsed character grid that every other stage reads
// from. One byte is one column; rows may be ragged.
package grid

import "strings"

// Blank is the filler character. Cells holding it are empty.
const Blank = '.'

// Coord is a 0-based (line, column) cell address.
type Coord struct {
	Line int
	Col  int
}

// Grid owns the rows of a schematic. It is immutable after Build.
type Grid struct {
	rows  []string
	width int
}

// Build splits text into rows. A trailing line terminator does not produce
// an empty final row, and a "\r" directly before a "\n" is dropped. A "\r"
// with no "\n" after it stays in the row.
func Build(text string) *Grid {
	g := &Grid{}
	if text == "" {
		return g
	}

	terminated := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		if i < len(lines)-1 || terminated {
			line = strings.TrimSuffix(line, "\r")
		}
		g.width = max(g.width, len(line))
		g.rows = append(g.rows, line)
	}
	return g
}

// Height returns the number of rows.
func (g *Grid) Height() int { return len(g.rows) }

// Width returns the length of the longest row.
func (g *Grid) Width() int { return g.width }

// Row returns row i, or "" when i is out of range.
func (g *Grid) Row(i int) string {
	if i < 0 || i >= len(g.rows) {
		return ""
	}
	return g.rows[i]
}

// CharAt returns the character at (line, col). Coordinates past the end of a
// short row, or outside the grid, report false.
func (g *Grid) CharAt(line, col int) (byte, bool) {
	if line < 0 || line >= len(g.rows) || col < 0 {
		return 0, false
	}
	row := g.rows[line]
	if col >= len(row) {
		return 0, false
	}
	return row[col], true
}

// Occupied reports whether (line, col) holds something other than Blank.
// Absent cells are not occupied.
func (g *Grid) Occupied(line, col int) bool {
	c, ok := g.CharAt(line, col)
	return ok && c != Blank
}

// Slice returns the inclusive column range [start, end] of a row without
// copying. It returns "" when the range does not fit the row.
func (g *Grid) Slice(line, start, end int) string {
	row := g.Row(line)
	if start < 0 || end < start || end >= len(row) {
		return ""
	}
	return row[start : end+1]
}

// Contains reports whether c lies inside the grid's bounding rectangle.
func (g *Grid) Contains(c Coord) bool {
	return c.Line >= 0 && c.Line < len(g.rows) && c.Col >= 0 && c.Col < g.width
}
