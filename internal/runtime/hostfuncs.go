package runtime

import (
	"context"

	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/token"
)

// makeTokensFn creates the "tokens" host function.
//
// tokens() → list of all tokens
// tokens(kind) → list of tokens of kind ("number" or "symbol")
func makeTokensFn(src Source) *object.Builtin {
	return object.NewBuiltin("tokens", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.NewArgsError("tokens", 1, len(args))
		}
		kinds, err := kindArgs("tokens", args)
		if err != nil {
			return err
		}
		tokens, qerr := src.TokensOf(kinds...)
		if qerr != nil {
			return object.Errorf("tokens: %v", qerr)
		}
		return tokensToList(tokens)
	})
}

// makeNeighborsFn creates the "neighbors" host function.
//
// neighbors(tok) → tokens bordering tok
// neighbors(tok, kind) → bordering tokens of kind
func makeNeighborsFn(src Source) *object.Builtin {
	return object.NewBuiltin("neighbors", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.NewArgsError("neighbors", 1, len(args))
		}
		tok, err := objectToToken(args[0])
		if err != nil {
			return object.Errorf("neighbors: %v", err)
		}
		kinds, kerr := kindArgs("neighbors", args[1:])
		if kerr != nil {
			return kerr
		}
		found, qerr := src.Neighbors(tok, kinds...)
		if qerr != nil {
			return object.Errorf("neighbors: %v", qerr)
		}
		return tokensToList(found)
	})
}

// makeTokenTextFn creates the "token_text" host function.
//
// token_text(tok) → string
func makeTokenTextFn(g *grid.Grid) *object.Builtin {
	return object.NewBuiltin("token_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("token_text", 1, len(args))
		}
		tok, err := objectToToken(args[0])
		if err != nil {
			return object.Errorf("token_text: %v", err)
		}
		return object.NewString(tok.Text(g))
	})
}

// makeTokenValueFn creates the "token_value" host function. Non-number
// tokens are a script error.
//
// token_value(tok) → int
func makeTokenValueFn(g *grid.Grid) *object.Builtin {
	return object.NewBuiltin("token_value", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("token_value", 1, len(args))
		}
		tok, err := objectToToken(args[0])
		if err != nil {
			return object.Errorf("token_value: %v", err)
		}
		v, err := tok.Value(g)
		if err != nil {
			return object.Errorf("token_value: %v", err)
		}
		return object.NewInt(int64(v))
	})
}

// makeCharAtFn creates the "char_at" host function. Absent cells return nil.
//
// char_at(line, col) → string | nil
func makeCharAtFn(g *grid.Grid) *object.Builtin {
	return object.NewBuiltin("char_at", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("char_at", 2, len(args))
		}
		line, err := toInt(args[0])
		if err != nil {
			return object.Errorf("char_at: line: %v", err)
		}
		col, err := toInt(args[1])
		if err != nil {
			return object.Errorf("char_at: col: %v", err)
		}
		c, ok := g.CharAt(line, col)
		if !ok {
			return object.Nil
		}
		return object.NewString(string([]byte{c}))
	})
}

// makeBorderFn creates the "border" host function.
//
// border(tok) → list of {"line", "col"} maps
func makeBorderFn(g *grid.Grid) *object.Builtin {
	return object.NewBuiltin("border", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("border", 1, len(args))
		}
		tok, err := objectToToken(args[0])
		if err != nil {
			return object.Errorf("border: %v", err)
		}
		cells := adjacency.Border(tok, g)
		results := make([]object.Object, 0, len(cells))
		for _, c := range cells {
			results = append(results, object.NewMap(map[string]object.Object{
				"line": object.NewInt(int64(c.Line)),
				"col":  object.NewInt(int64(c.Col)),
			}))
		}
		return object.NewList(results)
	})
}

// makeHasSymbolNeighborFn creates the "has_symbol_neighbor" host function.
//
// has_symbol_neighbor(tok) → bool
func makeHasSymbolNeighborFn(g *grid.Grid) *object.Builtin {
	return object.NewBuiltin("has_symbol_neighbor", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("has_symbol_neighbor", 1, len(args))
		}
		tok, err := objectToToken(args[0])
		if err != nil {
			return object.Errorf("has_symbol_neighbor: %v", err)
		}
		return object.NewBool(adjacency.HasSymbolNeighbor(tok, g))
	})
}

// makeEmitFn creates the "emit" host function, the only way a script
// reports results back to Go. Emitting a name twice keeps the last value.
//
// emit(name, int)
func makeEmitFn(results Results) *object.Builtin {
	return object.NewBuiltin("emit", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("emit", 2, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("emit: name: %v", err)
		}
		v, ok := args[1].(*object.Int)
		if !ok {
			return object.Errorf("emit: value must be an int, got %s", args[1].Type())
		}
		results[name] = v.Value()
		return object.Nil
	})
}

func kindArgs(fn string, args []object.Object) ([]token.Kind, *object.Error) {
	var kinds []token.Kind
	for _, a := range args {
		s, err := toString(a)
		if err != nil {
			return nil, object.Errorf("%s: kind: %v", fn, err)
		}
		k, err := token.ParseKind(s)
		if err != nil {
			return nil, object.Errorf("%s: %v", fn, err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *zap.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, zap.String("source", "script"))
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, zap.String("source", "script"))
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, zap.String("source", "script"))
}
