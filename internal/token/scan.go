package token

import "github.com/jward/schematic/internal/grid"

// state is the scanner's position relative to a digit run.
type state int

const (
	idle  state = iota // not inside a digit run
	inRun              // inside a digit run that started at scanner.start
)

// class is the character class that drives transitions.
type class int

const (
	classBlank class = iota
	classDigit
	classSymbol
)

func classify(c byte) class {
	switch {
	case c == grid.Blank:
		return classBlank
	case c >= '0' && c <= '9':
		return classDigit
	default:
		return classSymbol
	}
}

// scanner tokenizes one row at a time. Every exit from inRun emits exactly
// one Number covering the run.
type scanner struct {
	line  int
	state state
	start int
	out   []Token
}

func (s *scanner) closeRun(end int) {
	if s.state == inRun {
		s.out = append(s.out, Token{Span: Span{Line: s.line, Start: s.start, End: end}, Kind: Number})
		s.state = idle
	}
}

func (s *scanner) step(col int, c byte) {
	switch classify(c) {
	case classDigit:
		if s.state == idle {
			s.state = inRun
			s.start = col
		}
	case classBlank:
		s.closeRun(col - 1)
	case classSymbol:
		s.closeRun(col - 1)
		s.out = append(s.out, Token{Span: Span{Line: s.line, Start: col, End: col}, Kind: Symbol})
	}
}

func (s *scanner) scanRow(line int, row string) {
	s.line = line
	s.state = idle
	for col := 0; col < len(row); col++ {
		s.step(col, row[col])
	}
	s.closeRun(len(row) - 1)
}

// Tokenize returns every token in g in row-major order. Each digit run is one
// Number spanning its full extent. Each other non-blank character is one
// Symbol.
func Tokenize(g *grid.Grid) []Token {
	s := &scanner{}
	for line := 0; line < g.Height(); line++ {
		s.scanRow(line, g.Row(line))
	}
	return s.out
}

// Filter returns the tokens of the given kind, in order.
func Filter(tokens []Token, kind Kind) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}
