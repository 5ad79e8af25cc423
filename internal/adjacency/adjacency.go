// Package adjacency computes the 8-neighborhood border of a token and
// resolves it against grid characters or other tokens.
package adjacency

import (
	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/token"
)

// Border returns the cells surrounding t, clamped to g. On t's own line only
// the two flanking cells are included; on the lines above and below the
// segment runs one column past each end of the span. Cells are ordered by
// line, then column.
func Border(t token.Token, g *grid.Grid) []grid.Coord {
	width := g.Width()
	var out []grid.Coord
	for r := t.Line - 1; r <= t.Line+1; r++ {
		if r < 0 || r >= g.Height() {
			continue
		}
		if r == t.Line {
			if t.Start > 0 {
				out = append(out, grid.Coord{Line: r, Col: t.Start - 1})
			}
			if t.End+1 <= width-1 {
				out = append(out, grid.Coord{Line: r, Col: t.End + 1})
			}
			continue
		}
		for col := max(0, t.Start-1); col <= min(width-1, t.End+1); col++ {
			out = append(out, grid.Coord{Line: r, Col: col})
		}
	}
	return out
}

// HasSymbolNeighbor reports whether any border cell of t holds a character
// other than the blank. Cells past the end of a short row count as blank.
func HasSymbolNeighbor(t token.Token, g *grid.Grid) bool {
	for _, c := range Border(t, g) {
		if g.Occupied(c.Line, c.Col) {
			return true
		}
	}
	return false
}

// NeighboringTokens returns the candidates that occupy at least one border
// cell of t. Every column of a candidate's span is checked, so a border cell
// landing inside a long number still matches it. t itself is never returned
// and each neighbor appears once, in candidate order.
func NeighboringTokens(t token.Token, g *grid.Grid, candidates []token.Token) []token.Token {
	border := make(map[grid.Coord]struct{})
	for _, c := range Border(t, g) {
		border[c] = struct{}{}
	}

	seen := make(map[token.Span]bool)
	var out []token.Token
	for _, cand := range candidates {
		if cand.Same(t) || seen[cand.Span] {
			continue
		}
		if touches(cand, border) {
			seen[cand.Span] = true
			out = append(out, cand)
		}
	}
	return out
}

func touches(cand token.Token, border map[grid.Coord]struct{}) bool {
	for col := cand.Start; col <= cand.End; col++ {
		if _, ok := border[grid.Coord{Line: cand.Line, Col: col}]; ok {
			return true
		}
	}
	return false
}

// Window is the bounding rectangle of a token's border, inclusive on all
// sides. Any neighbor of the token intersects it, so an index can use it to
// narrow candidates before NeighboringTokens does the exact check.
type Window struct {
	FirstLine, LastLine int
	FirstCol, LastCol   int
}

// WindowOf returns t's border window clamped to g.
func WindowOf(t token.Token, g *grid.Grid) Window {
	return Window{
		FirstLine: max(0, t.Line-1),
		LastLine:  min(g.Height()-1, t.Line+1),
		FirstCol:  max(0, t.Start-1),
		LastCol:   min(g.Width()-1, t.End+1),
	}
}

// Intersects reports whether span s overlaps w.
func (w Window) Intersects(s token.Span) bool {
	return s.Line >= w.FirstLine && s.Line <= w.LastLine &&
		s.End >= w.FirstCol && s.Start <= w.LastCol
}
