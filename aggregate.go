package schematic

import (
	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/token"
)

// PartNumberSum returns the sum of every Number in tokens that has a
// non-blank cell on its border. It panics if a Number's text does not parse,
// which means the tokenizer produced a malformed token.
func PartNumberSum(tokens []Token, g *Grid) int {
	sum := 0
	for _, t := range tokens {
		if t.Kind != token.Number {
			continue
		}
		if adjacency.HasSymbolNeighbor(t, g) {
			sum += t.MustValue(g)
		}
	}
	return sum
}

// GearRatioSum returns the sum of a*b over every Symbol whose character is
// gear and which borders exactly two Numbers a and b. Neighbor candidates are
// restricted to Numbers before counting, so a gear touching two numbers and
// another symbol still counts.
func GearRatioSum(tokens []Token, g *Grid, gear byte) int {
	numbers := token.Filter(tokens, token.Number)
	sum := 0
	for _, t := range tokens {
		if !isGear(t, g, gear) {
			continue
		}
		if ratio, ok := gearRatio(adjacency.NeighboringTokens(t, g, numbers), g); ok {
			sum += ratio
		}
	}
	return sum
}

func isGear(t token.Token, g *grid.Grid, gear byte) bool {
	if t.Kind != token.Symbol {
		return false
	}
	c, ok := g.CharAt(t.Line, t.Start)
	return ok && c == gear
}

// gearRatio multiplies the two numbers of a gear. Any other neighbor count
// is not a gear.
func gearRatio(numbers []token.Token, g *grid.Grid) (int, bool) {
	if len(numbers) != 2 {
		return 0, false
	}
	return numbers[0].MustValue(g) * numbers[1].MustValue(g), true
}
