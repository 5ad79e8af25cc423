package schematic

import (
	"fmt"

	"github.com/jward/schematic/internal/token"
)

// BorderCell is one border coordinate with the character found there.
type BorderCell struct {
	Coord
	Char  string // "" when the cell is absent (past a short row)
	Token *Token // token occupying the cell, or nil
}

// TokenDetail is a combined response that bundles a token with its border
// and neighbors. One call replaces separate Border, Neighbors and
// HasSymbolNeighbor lookups.
type TokenDetail struct {
	Token     TokenResult
	Border    []BorderCell
	Neighbors []TokenResult
	Part      bool  // a number with a symbol neighbor
	Gear      *Gear // set when the token is a gear
}

// TokenDetail returns the token at (line, col) with its border cells and
// neighbors. Returns nil with no error if no token covers the cell.
func (q *QueryBuilder) TokenDetail(line, col int) (*TokenDetail, error) {
	t, err := q.TokenAt(line, col)
	if err != nil {
		return nil, fmt.Errorf("token detail: %w", err)
	}
	if t == nil {
		return nil, nil
	}

	tr, err := q.tokenResult(*t)
	if err != nil {
		return nil, fmt.Errorf("token detail: %w", err)
	}

	g := q.engine.grid
	cells := q.Border(*t)
	border := make([]BorderCell, 0, len(cells))
	for _, c := range cells {
		cell := BorderCell{Coord: c}
		if ch, ok := g.CharAt(c.Line, c.Col); ok {
			cell.Char = string([]byte{ch})
		}
		if g.Occupied(c.Line, c.Col) {
			occ, err := q.TokenAt(c.Line, c.Col)
			if err != nil {
				return nil, fmt.Errorf("token detail: border %d:%d: %w", c.Line, c.Col, err)
			}
			cell.Token = occ
		}
		border = append(border, cell)
	}

	ns, err := q.Neighbors(*t)
	if err != nil {
		return nil, fmt.Errorf("token detail: %w", err)
	}
	neighbors := make([]TokenResult, 0, len(ns))
	for _, n := range ns {
		nr, err := q.tokenResult(n)
		if err != nil {
			return nil, fmt.Errorf("token detail: neighbor %s: %w", n, err)
		}
		neighbors = append(neighbors, nr)
	}

	d := &TokenDetail{
		Token:     tr,
		Border:    border,
		Neighbors: neighbors,
		Part:      t.Kind == token.Number && tr.SymbolNeighbor,
	}
	if isGear(*t, g, q.engine.gear) {
		numbers, err := q.Neighbors(*t, token.Number)
		if err != nil {
			return nil, fmt.Errorf("token detail: %w", err)
		}
		if len(numbers) == 2 {
			a, b := numbers[0].MustValue(g), numbers[1].MustValue(g)
			d.Gear = &Gear{
				Symbol:  *t,
				Numbers: [2]Token{numbers[0], numbers[1]},
				Values:  [2]int{a, b},
				Ratio:   a * b,
			}
		}
	}
	return d, nil
}
