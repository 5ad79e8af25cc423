package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/token"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite token index. The database lives in memory and is
// discarded on Close.
type Store struct {
	db *sql.DB
}

// NewStore opens an in-memory SQLite database and creates the schema.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every pooled connection to ":memory:" would get its own database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS tokens (
  id              INTEGER PRIMARY KEY,
  line            INTEGER NOT NULL,
  start_col       INTEGER NOT NULL,
  end_col         INTEGER NOT NULL,
  kind            TEXT NOT NULL,
  UNIQUE (line, start_col, end_col)
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tokens_position ON tokens(line, start_col, end_col);
CREATE INDEX IF NOT EXISTS idx_tokens_kind ON tokens(kind);
`

// Reset deletes every token and metadata row.
func (s *Store) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("reset: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM tokens", "DELETE FROM metadata"} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return tx.Commit()
}

// InsertTokens inserts all tokens in a single transaction.
func (s *Store) InsertTokens(tokens []token.Token) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert tokens: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO tokens (line, start_col, end_col, kind) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("insert tokens: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range tokens {
		if _, err := stmt.Exec(t.Line, t.Start, t.End, t.Kind.String()); err != nil {
			return fmt.Errorf("insert tokens: %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// TokensInWindow returns tokens intersecting w, ordered by position.
func (s *Store) TokensInWindow(w adjacency.Window) ([]token.Token, error) {
	rows, err := s.db.Query(
		`SELECT line, start_col, end_col, kind FROM tokens
		 WHERE line BETWEEN ? AND ? AND end_col >= ? AND start_col <= ?
		 ORDER BY line, start_col`,
		w.FirstLine, w.LastLine, w.FirstCol, w.LastCol,
	)
	if err != nil {
		return nil, fmt.Errorf("tokens in window: %w", err)
	}
	return scanTokens(rows)
}

// TokenAt returns the token covering (line, col), or nil if the cell is
// blank or outside the grid.
func (s *Store) TokenAt(line, col int) (*token.Token, error) {
	rows, err := s.db.Query(
		`SELECT line, start_col, end_col, kind FROM tokens
		 WHERE line = ? AND start_col <= ? AND end_col >= ?`,
		line, col, col,
	)
	if err != nil {
		return nil, fmt.Errorf("token at: %w", err)
	}
	tokens, err := scanTokens(rows)
	if err != nil {
		return nil, fmt.Errorf("token at: %w", err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return &tokens[0], nil
}

// TokensByKind returns tokens of the given kinds in row-major order.
func (s *Store) TokensByKind(kinds ...token.Kind) ([]token.Token, error) {
	q := "SELECT line, start_col, end_col, kind FROM tokens"
	var args []any
	if len(kinds) > 0 {
		q += " WHERE kind IN (" + placeholderList(len(kinds)) + ")"
		args = kindsToArgs(kinds)
	}
	q += " ORDER BY line, start_col"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("tokens by kind: %w", err)
	}
	return scanTokens(rows)
}

// Count returns the number of tokens.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tokens").Scan(&n); err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return n, nil
}

// SetMetadata upserts a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// GetMetadata returns the value for key, or "" if unset.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value, nil
}

// QueryReadOnly runs a single statement with writes disabled and passes its
// rows to fn. The statement runs under PRAGMA query_only on the pooled
// connection, which is switched back before the connection is released.
// Text after the first statement is rejected.
func (s *Store) QueryReadOnly(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) (err error) {
	if !singleStatement(query) {
		return fmt.Errorf("read-only query: only one statement is allowed")
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("read-only query: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("read-only query: %w", err)
	}
	defer func() {
		if _, rerr := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); rerr != nil && err == nil {
			err = fmt.Errorf("read-only query: restore writes: %w", rerr)
		}
	}()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("read-only query: %w", err)
	}
	defer rows.Close()
	if err := fn(rows); err != nil {
		return fmt.Errorf("read-only query: %w", err)
	}
	return nil
}

func scanTokens(rows *sql.Rows) ([]token.Token, error) {
	defer rows.Close()
	var out []token.Token
	for rows.Next() {
		var (
			t    token.Token
			kind string
		)
		if err := rows.Scan(&t.Line, &t.Start, &t.End, &kind); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		k, err := token.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		t.Kind = k
		out = append(out, t)
	}
	return out, rows.Err()
}
