package store

import (
	"strings"

	"github.com/jward/schematic/internal/token"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// kindsToArgs converts kinds to their stored names for use with database/sql.
func kindsToArgs(kinds []token.Kind) []any {
	args := make([]any, len(kinds))
	for i, k := range kinds {
		args[i] = k.String()
	}
	return args
}

// singleStatement reports whether query holds at most one SQL statement:
// nothing but blanks, comments and semicolons may follow the first ";".
// Quoted strings and identifiers are skipped so a ";" inside them does not
// count.
func singleStatement(query string) bool {
	ended := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return true
			}
			i += end + 3
		case c == ';':
			ended = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			if ended {
				return false
			}
			if closer, ok := quoteClose[c]; ok {
				end := strings.IndexByte(query[i+1:], closer)
				if end < 0 {
					return true
				}
				i += end + 1
			}
		}
	}
	return true
}

// quoteClose maps SQLite's opening quote characters to their closers.
var quoteClose = map[byte]byte{'\'': '\'', '"': '"', '`': '`', '[': ']'}
