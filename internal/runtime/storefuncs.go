package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/risor-io/risor/object"

	"github.com/jward/schematic/internal/store"
	"github.com/jward/schematic/internal/token"
)

// Tokens cross into Risor as maps with primitive values, since scripts
// cannot construct Go structs:
//
//	{"line": 0, "start": 0, "end": 2, "kind": "number"}

func tokenToObject(t token.Token) object.Object {
	return object.NewMap(map[string]object.Object{
		"line":  object.NewInt(int64(t.Line)),
		"start": object.NewInt(int64(t.Start)),
		"end":   object.NewInt(int64(t.End)),
		"kind":  object.NewString(t.Kind.String()),
	})
}

func tokensToList(tokens []token.Token) object.Object {
	results := make([]object.Object, 0, len(tokens))
	for _, t := range tokens {
		results = append(results, tokenToObject(t))
	}
	return object.NewList(results)
}

func objectToToken(obj object.Object) (token.Token, error) {
	m, err := extractMap(obj)
	if err != nil {
		return token.Token{}, err
	}
	var t token.Token
	if t.Line, err = getInt(m, "line"); err != nil {
		return token.Token{}, err
	}
	if t.Start, err = getInt(m, "start"); err != nil {
		return token.Token{}, err
	}
	if t.End, err = getInt(m, "end"); err != nil {
		return token.Token{}, err
	}
	if t.Kind, err = token.ParseKind(getString(m, "kind")); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

// getInt reads an int field. Missing keys are an error because a token
// without a position cannot be looked up.
func getInt(m map[string]object.Object, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", key, err)
	}
	return n, nil
}

func toInt(obj object.Object) (int, error) {
	i, ok := obj.(*object.Int)
	if !ok {
		return 0, fmt.Errorf("expected int, got %s", obj.Type())
	}
	return safecast.Conv[int](i.Value())
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

// makeDBQueryFn exposes read-only SQL over the tokens table. Only a single
// SELECT or WITH statement is accepted, and writes fail at the database:
//
//	db_query("SELECT line, start_col FROM tokens WHERE kind = ?", "symbol") → list
//
// Each row becomes a map keyed by column name. Arguments bind to ? in order
// and must be ints or strings, the only column types the schema has.
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected sql argument")
		}
		query, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		if !readOnly(query) {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}
		binds, err := bindArgs(args[1:])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		var list object.Object
		err = s.QueryReadOnly(ctx, query, binds, func(rows *sql.Rows) error {
			var err error
			list, err = rowsToList(rows)
			return err
		})
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		return list
	})
}

func readOnly(query string) bool {
	head := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(head, "SELECT") || strings.HasPrefix(head, "WITH")
}

func bindArgs(args []object.Object) ([]any, error) {
	binds := make([]any, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case *object.Int:
			binds = append(binds, v.Value())
		case *object.String:
			binds = append(binds, v.Value())
		default:
			return nil, fmt.Errorf("argument %d: expected int or string, got %s", i+1, arg.Type())
		}
	}
	return binds, nil
}

func rowsToList(rows *sql.Rows) (object.Object, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	out := []object.Object{}
	for rows.Next() {
		cells := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(map[string]object.Object, len(cols))
		for i, col := range cols {
			row[col] = cellToObject(cells[i])
		}
		out = append(out, object.NewMap(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return object.NewList(out), nil
}

func cellToObject(v any) object.Object {
	switch val := v.(type) {
	case nil:
		return object.Nil
	case int64:
		return object.NewInt(val)
	case string:
		return object.NewString(val)
	case []byte:
		return object.NewString(string(val))
	default:
		return object.NewString(fmt.Sprint(val))
	}
}
