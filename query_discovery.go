package schematic

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/jward/schematic/internal/token"
)

// --- Common Types ---

// Pagination controls offset+limit paging on list results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// SortField specifies how to order results.
type SortField string

const (
	SortByPosition SortField = "position"
	SortByValue    SortField = "value"
	SortByKind     SortField = "kind"
	SortByDegree   SortField = "degree"
)

// SortOrder specifies ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort controls result ordering.
type Sort struct {
	Field SortField
	Order SortOrder
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// TokenResult extends Token with values computed against the grid.
type TokenResult struct {
	Token
	Text           string
	Value          *int // nil for symbols
	SymbolNeighbor bool // border holds a non-blank cell
	Degree         int  // number of bordering tokens of the other kind
}

// TokenFilter specifies which tokens to include. All fields are optional.
type TokenFilter struct {
	Kinds []Kind  // match any of these kinds
	Chars string  // symbols whose character is in Chars; numbers are unaffected
	Line  *int    // restrict to one row
	Parts *bool   // numbers with (true) or without (false) a symbol neighbor
	Text  *string // exact token text
}

func (f TokenFilter) match(r TokenResult) bool {
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, r.Kind) {
		return false
	}
	if f.Chars != "" && r.Kind == token.Symbol && !strings.Contains(f.Chars, r.Text) {
		return false
	}
	if f.Line != nil && r.Line != *f.Line {
		return false
	}
	if f.Parts != nil && (r.Kind != token.Number || r.SymbolNeighbor != *f.Parts) {
		return false
	}
	if f.Text != nil && r.Text != *f.Text {
		return false
	}
	return true
}

// --- Internal Helpers ---

// compareTokens orders results by field. Ties and unknown fields fall back
// to row-major position. Symbols sort after numbers by value.
func compareTokens(field SortField) func(a, b TokenResult) int {
	byPosition := func(a, b TokenResult) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Start, b.Start))
	}
	switch field {
	case SortByValue:
		return func(a, b TokenResult) int {
			switch {
			case a.Value != nil && b.Value != nil:
				return cmp.Or(cmp.Compare(*a.Value, *b.Value), byPosition(a, b))
			case a.Value != nil:
				return -1
			case b.Value != nil:
				return 1
			}
			return cmp.Or(strings.Compare(a.Text, b.Text), byPosition(a, b))
		}
	case SortByKind:
		return func(a, b TokenResult) int {
			return cmp.Or(cmp.Compare(a.Kind, b.Kind), byPosition(a, b))
		}
	case SortByDegree:
		return func(a, b TokenResult) int {
			return cmp.Or(cmp.Compare(a.Degree, b.Degree), byPosition(a, b))
		}
	default:
		return byPosition
	}
}

// tokenResult computes the derived fields for t.
func (q *QueryBuilder) tokenResult(t Token) (TokenResult, error) {
	g := q.engine.grid
	r := TokenResult{
		Token:          t,
		Text:           t.Text(g),
		SymbolNeighbor: q.HasSymbolNeighbor(t),
	}
	other := token.Symbol
	if t.Kind == token.Number {
		v := t.MustValue(g)
		r.Value = &v
	} else {
		other = token.Number
	}
	neighbors, err := q.Neighbors(t, other)
	if err != nil {
		return TokenResult{}, err
	}
	r.Degree = len(neighbors)
	return r, nil
}

func paginate[T any](items []T, page Pagination) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := min(page.Offset+page.Limit, len(items))
	return items[page.Offset:end]
}

// --- Enumeration Endpoints ---

// Tokens is the primary listing/filtering endpoint.
func (q *QueryBuilder) Tokens(filter TokenFilter, sort Sort, page Pagination) (*PagedResult[TokenResult], error) {
	page = page.normalize()

	all, err := q.TokensOf(filter.Kinds...)
	if err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}

	var matched []TokenResult
	for _, t := range all {
		if filter.Line != nil && t.Line != *filter.Line {
			continue
		}
		r, err := q.tokenResult(t)
		if err != nil {
			return nil, fmt.Errorf("tokens: %w", err)
		}
		if filter.match(r) {
			matched = append(matched, r)
		}
	}

	compare := compareTokens(sort.Field)
	if sort.Order == Desc {
		slices.SortStableFunc(matched, func(a, b TokenResult) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(matched, compare)
	}

	return &PagedResult[TokenResult]{
		Items:      paginate(matched, page),
		TotalCount: len(matched),
	}, nil
}

// --- Digest Endpoints ---

// Summary provides a high-level overview of the loaded grid.
type Summary struct {
	Height        int
	Width         int
	Tokens        int
	Numbers       int
	Symbols       int
	SymbolChars   map[string]int // count per symbol character
	PartNumbers   int            // numbers with a symbol neighbor
	LoneNumbers   int            // numbers without one
	Gears         int
	PartNumberSum int
	GearRatioSum  int
}

// Summary returns counts and both sums for the loaded grid.
func (q *QueryBuilder) Summary() (*Summary, error) {
	g := q.engine.grid
	tokens, err := q.TokensOf()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	s := &Summary{
		Height:      g.Height(),
		Width:       g.Width(),
		Tokens:      len(tokens),
		SymbolChars: map[string]int{},
	}
	for _, t := range tokens {
		if t.Kind == token.Symbol {
			s.Symbols++
			s.SymbolChars[t.Text(g)]++
			continue
		}
		s.Numbers++
		if q.HasSymbolNeighbor(t) {
			s.PartNumbers++
			s.PartNumberSum += t.MustValue(g)
		} else {
			s.LoneNumbers++
		}
	}

	gears, err := q.Gears()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	s.Gears = len(gears)
	for _, gr := range gears {
		s.GearRatioSum += gr.Ratio
	}
	return s, nil
}
