// Package token splits a grid into Number and Symbol tokens.
//
// A Token stores only its position. Its text is read back from the grid it
// was scanned from, so the grid must be passed to Text and Value.
package token

import (
	"fmt"
	"strconv"

	"github.com/jward/schematic/internal/grid"
)

// Kind classifies a token.
type Kind int

const (
	Number Kind = iota + 1 // maximal run of decimal digits
	Symbol                 // single non-digit, non-blank character
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Symbol:
		return "symbol"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "number":
		return Number, nil
	case "symbol":
		return Symbol, nil
	default:
		return 0, fmt.Errorf("unknown token kind %q", s)
	}
}

// Span is an inclusive column range on one line. It is a token's identity:
// two tokens are the same token iff their spans are equal.
type Span struct {
	Line  int
	Start int
	End   int // inclusive
}

// Len returns the number of columns covered.
func (s Span) Len() int { return s.End - s.Start + 1 }

// Covers reports whether (line, col) falls inside the span.
func (s Span) Covers(line, col int) bool {
	return line == s.Line && col >= s.Start && col <= s.End
}

// Token is a located Number or Symbol.
type Token struct {
	Span
	Kind Kind
}

// Same reports whether t and o are the same token.
func (t Token) Same(o Token) bool { return t.Span == o.Span }

// Text slices the token's characters out of g.
func (t Token) Text(g *grid.Grid) string {
	return g.Slice(t.Line, t.Start, t.End)
}

// Value parses a Number token's text as an int.
func (t Token) Value(g *grid.Grid) (int, error) {
	if t.Kind != Number {
		return 0, fmt.Errorf("token %d:%d-%d is a %s, not a number", t.Line, t.Start, t.End, t.Kind)
	}
	text := t.Text(g)
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("token %d:%d-%d: parse %q: %w", t.Line, t.Start, t.End, text, err)
	}
	return n, nil
}

// MustValue is Value for callers that hold tokens produced by Tokenize on g.
// The tokenizer only emits digit runs as numbers, so a parse failure means
// its contract is broken and the computation cannot continue.
func (t Token) MustValue(g *grid.Grid) int {
	n, err := t.Value(g)
	if err != nil {
		panic(fmt.Sprintf("token: invariant violated: %v", err))
	}
	return n
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%d:%d-%d", t.Kind, t.Line, t.Start, t.End)
}
