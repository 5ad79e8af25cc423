package schematic

import (
	"fmt"
	"slices"

	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/token"
)

// QueryBuilder answers token and adjacency questions about the grid loaded
// into an Engine. Candidate neighbors come from the engine's index and are
// confirmed cell by cell against the border.
type QueryBuilder struct {
	engine *Engine
}

// Grid returns the grid the queries run against.
func (q *QueryBuilder) Grid() *Grid {
	return q.engine.grid
}

// TokenAt returns the token covering (line, col), or nil if the cell is
// blank or outside the grid.
func (q *QueryBuilder) TokenAt(line, col int) (*Token, error) {
	t, err := q.engine.index.TokenAt(line, col)
	if err != nil {
		return nil, fmt.Errorf("token at: %w", err)
	}
	return t, nil
}

// TokensOf returns the tokens of the given kinds in row-major order. No
// kinds means every token.
func (q *QueryBuilder) TokensOf(kinds ...Kind) ([]Token, error) {
	tokens, err := q.engine.index.TokensByKind(kinds...)
	if err != nil {
		return nil, fmt.Errorf("tokens of: %w", err)
	}
	return tokens, nil
}

// Border returns the clamped border cells of t.
func (q *QueryBuilder) Border(t Token) []Coord {
	return adjacency.Border(t, q.engine.grid)
}

// HasSymbolNeighbor reports whether any border cell of t is occupied.
func (q *QueryBuilder) HasSymbolNeighbor(t Token) bool {
	return adjacency.HasSymbolNeighbor(t, q.engine.grid)
}

// Neighbors returns the tokens bordering t, optionally restricted to kinds.
// Results are in row-major order and never include t.
func (q *QueryBuilder) Neighbors(t Token, kinds ...Kind) ([]Token, error) {
	g := q.engine.grid
	if g.Height() == 0 {
		return nil, nil
	}
	candidates, err := q.engine.index.TokensInWindow(adjacency.WindowOf(t, g))
	if err != nil {
		return nil, fmt.Errorf("neighbors of %s: %w", t, err)
	}
	if len(kinds) > 0 {
		candidates = slices.DeleteFunc(candidates, func(c token.Token) bool {
			return !slices.Contains(kinds, c.Kind)
		})
	}
	return adjacency.NeighboringTokens(t, g, candidates), nil
}

// PartNumbers returns every Number with an occupied border cell.
func (q *QueryBuilder) PartNumbers() ([]Token, error) {
	numbers, err := q.TokensOf(token.Number)
	if err != nil {
		return nil, fmt.Errorf("part numbers: %w", err)
	}
	var parts []Token
	for _, n := range numbers {
		if q.HasSymbolNeighbor(n) {
			parts = append(parts, n)
		}
	}
	return parts, nil
}

// PartNumberSum is the indexed equivalent of the package-level
// PartNumberSum.
func (q *QueryBuilder) PartNumberSum() (int, error) {
	parts, err := q.PartNumbers()
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, p := range parts {
		sum += p.MustValue(q.engine.grid)
	}
	return sum, nil
}

// GearRatioSum is the indexed equivalent of the package-level GearRatioSum,
// using the engine's gear character.
func (q *QueryBuilder) GearRatioSum() (int, error) {
	gears, err := q.Gears()
	if err != nil {
		return 0, err
	}
	sum := 0
	for _, g := range gears {
		sum += g.Ratio
	}
	return sum, nil
}
