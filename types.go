package schematic

import (
	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/token"
)

// Public type aliases for the internal grid and token types used in the
// QueryBuilder API. These are Go type aliases (=) and need no conversion.

type Grid = grid.Grid
type Coord = grid.Coord
type Token = token.Token
type Span = token.Span
type Kind = token.Kind

const (
	Number = token.Number
	Symbol = token.Symbol
)

// DefaultGear is the symbol treated as a gear unless WithGear says otherwise.
const DefaultGear byte = '*'
