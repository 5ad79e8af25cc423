// Package schematic parses a rectangular character grid into Number tokens
// (maximal runs of decimal digits) and Symbol tokens (any other character
// except '.'), and answers adjacency questions over them.
//
// # Pipeline
//
//  1. Build: the raw text is split into rows. Rows may be ragged; reads past
//     the end of a short row behave like '.'.
//  2. Tokenize: each row is scanned left to right by a two-state machine
//     (idle, in a digit run) that emits one token per run or symbol.
//  3. Index: tokens are bucketed by row, either in memory or in an
//     in-memory SQLite table, so a neighbor search only inspects the three
//     rows around a token.
//  4. Query: borders, neighbors, part numbers and gears are computed on
//     demand from the grid and the index.
//
// # Usage
//
//	e, err := schematic.New(schematic.WithGear('*'))
//	if err != nil { ... }
//	defer e.Close()
//
//	if err := e.Load(ctx, os.Stdin); err != nil { ... }
//
//	q := e.Query()
//	parts, err := q.PartNumberSum()
//	gears, err := q.GearRatioSum()
//
// The same sums are available without an Engine through [PartNumberSum] and
// [GearRatioSum], which take a token slice and the grid directly.
//
// # Adjacency
//
// A token's border is its 8-neighborhood clamped to the grid: the two
// flanking cells on its own row, plus the span widened by one column on each
// side on the rows above and below. A Number borders a token when any column
// of its span lands on one of these cells.
//
// # Reports
//
// [Engine.RunReport] runs a Risor script from the scripts directory or an
// embedded fs.FS. Scripts see the grid through host functions (tokens,
// border, neighbors, char_at, token_value, ...) and report integers with
// emit(name, value). See the internal/runtime package for the full set.
package schematic
