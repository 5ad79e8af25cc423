package store

import (
	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/token"
)

// Index is the token lookup layer the engine queries during adjacency
// searches. Both Store (in-memory SQLite) and MemoryIndex (row buckets)
// implement it and must return identical results.
type Index interface {
	// Reset drops all tokens and metadata.
	Reset() error
	// InsertTokens adds tokens. Spans must be unique.
	InsertTokens(tokens []token.Token) error

	// TokensInWindow returns tokens whose span intersects w, ordered by
	// line then start column.
	TokensInWindow(w adjacency.Window) ([]token.Token, error)
	// TokenAt returns the token covering (line, col), or nil.
	TokenAt(line, col int) (*token.Token, error)
	// TokensByKind returns tokens of any of the given kinds in row-major
	// order. No kinds means all tokens.
	TokensByKind(kinds ...token.Kind) ([]token.Token, error)
	// Count returns the number of indexed tokens.
	Count() (int, error)

	SetMetadata(key, value string) error
	// GetMetadata returns "" when key is unset.
	GetMetadata(key string) (string, error)

	Close() error
}

// Compile-time checks.
var (
	_ Index = (*Store)(nil)
	_ Index = (*MemoryIndex)(nil)
)
