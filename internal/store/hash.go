package store

import (
	"crypto/sha256"
	"fmt"
)

// Metadata keys written by the engine.
const (
	MetaGridHash   = "grid_hash"
	MetaGridWidth  = "grid_width"
	MetaGridHeight = "grid_height"
)

// ComputeGridHash returns the hex SHA-256 of the raw grid text. The engine
// compares it against MetaGridHash to skip reindexing identical input.
func ComputeGridHash(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}
