package schematic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"go.uber.org/zap"

	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/runtime"
	"github.com/jward/schematic/internal/store"
	"github.com/jward/schematic/internal/token"
)

// IndexKind selects the token index backend.
type IndexKind string

const (
	IndexMemory IndexKind = "memory" // row buckets in Go maps
	IndexSQLite IndexKind = "sqlite" // in-memory SQLite table
)

// ParseIndexKind validates an index backend name.
func ParseIndexKind(s string) (IndexKind, error) {
	switch IndexKind(s) {
	case IndexMemory, IndexSQLite:
		return IndexKind(s), nil
	default:
		return "", fmt.Errorf("unknown index %q (want memory or sqlite)", s)
	}
}

// Engine orchestrates the schematic pipeline: grid construction,
// tokenization, indexing, and query access.
type Engine struct {
	index      store.Index
	indexKind  IndexKind
	gear       byte
	logger     *zap.Logger
	runtime    *runtime.Runtime
	scriptsDir string
	scriptsFS  fs.FS

	// grid and tokens describe the last loaded input. A fresh Engine holds
	// an empty grid, so every query answers zero.
	grid   *grid.Grid
	tokens []token.Token
}

// Option configures an Engine.
type Option func(*Engine)

// WithGear sets the symbol character paired by GearRatioSum.
func WithGear(c byte) Option {
	return func(e *Engine) {
		e.gear = c
	}
}

// WithIndex selects the token index backend. Both give identical answers.
func WithIndex(kind IndexKind) Option {
	return func(e *Engine) {
		e.indexKind = kind
	}
}

// WithLogger sets the logger for load and report diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScriptsFS configures the Engine to load Risor report scripts from the
// given filesystem instead of from disk. This enables embedding scripts via
// go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// WithScriptsDir loads report scripts from dir on disk. WithScriptsFS takes
// priority when both are set.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// New creates an Engine with an empty grid.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		indexKind: IndexMemory,
		gear:      DefaultGear,
		logger:    zap.NewNop(),
		grid:      grid.Build(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gear == grid.Blank || (e.gear >= '0' && e.gear <= '9') {
		return nil, fmt.Errorf("schematic: gear %q can never be a symbol", e.gear)
	}

	var rtOpts []runtime.RuntimeOption
	switch e.indexKind {
	case IndexMemory:
		e.index = store.NewMemoryIndex()
	case IndexSQLite:
		s, err := store.NewStore()
		if err != nil {
			return nil, fmt.Errorf("schematic: create store: %w", err)
		}
		e.index = s
		rtOpts = append(rtOpts, runtime.WithStore(s))
	default:
		return nil, fmt.Errorf("schematic: unknown index %q", e.indexKind)
	}

	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	rtOpts = append(rtOpts, runtime.WithRuntimeLogger(e.logger))
	e.runtime = runtime.NewRuntime(e.scriptsDir, rtOpts...)

	return e, nil
}

// Close releases the index.
func (e *Engine) Close() error {
	return e.index.Close()
}

// Grid returns the currently loaded grid.
func (e *Engine) Grid() *Grid {
	return e.grid
}

// Gear returns the configured gear character.
func (e *Engine) Gear() byte {
	return e.gear
}

// Query returns a new QueryBuilder over the loaded grid.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{engine: e}
}

// Load reads all of r and loads it as the grid.
func (e *Engine) Load(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("schematic: read input: %w", err)
	}
	return e.LoadString(ctx, string(data))
}

// LoadString replaces the loaded grid with text. Tokenization completes
// before the index is rebuilt, and a text identical to the loaded one is
// skipped.
func (e *Engine) LoadString(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("schematic: load: %w", err)
	}

	hash := store.ComputeGridHash(text)
	stored, err := e.index.GetMetadata(store.MetaGridHash)
	if err != nil {
		return fmt.Errorf("schematic: load: %w", err)
	}
	if stored == hash {
		e.logger.Debug("grid unchanged, skipping reindex", zap.String("hash", hash))
		return nil
	}

	g := grid.Build(text)
	tokens := token.Tokenize(g)

	if err := e.fillIndex(g, tokens, hash); err != nil {
		return e.unload(err)
	}

	e.grid = g
	e.tokens = tokens
	e.logger.Debug("grid loaded",
		zap.Int("height", g.Height()),
		zap.Int("width", g.Width()),
		zap.Int("tokens", len(tokens)),
		zap.String("index", string(e.indexKind)),
	)
	return nil
}

// fillIndex replaces the index contents with tokens. The grid hash is
// written last, so an index that was only partly filled never matches the
// hash check in LoadString.
func (e *Engine) fillIndex(g *grid.Grid, tokens []token.Token, hash string) error {
	if err := e.index.Reset(); err != nil {
		return fmt.Errorf("schematic: reset index: %w", err)
	}
	if err := e.index.InsertTokens(tokens); err != nil {
		return fmt.Errorf("schematic: index tokens: %w", err)
	}
	meta := []struct{ key, value string }{
		{store.MetaGridWidth, strconv.Itoa(g.Width())},
		{store.MetaGridHeight, strconv.Itoa(g.Height())},
		{store.MetaGridHash, hash},
	}
	for _, m := range meta {
		if err := e.index.SetMetadata(m.key, m.value); err != nil {
			return fmt.Errorf("schematic: index metadata: %w", err)
		}
	}
	return nil
}

// unload drops back to an empty grid after a failed load, so queries never
// pair the previous grid with a partly rebuilt index.
func (e *Engine) unload(cause error) error {
	e.grid = grid.Build("")
	e.tokens = nil
	if err := e.index.Reset(); err != nil {
		cause = errors.Join(cause, fmt.Errorf("schematic: clear index: %w", err))
	}
	e.logger.Debug("load failed, grid cleared", zap.Error(cause))
	return cause
}

// Tokens returns every token of the loaded grid in row-major order.
func (e *Engine) Tokens() []Token {
	return e.tokens
}

// RunReport runs the report script report/<name>.risor and returns the
// values it emitted.
func (e *Engine) RunReport(ctx context.Context, name string) (map[string]int64, error) {
	results, err := e.runtime.RunScript(ctx, runtime.ReportScriptPath(name), reportSource{q: e.Query()}, nil)
	if err != nil {
		return nil, fmt.Errorf("schematic: report %s: %w", name, err)
	}
	e.logger.Debug("report finished", zap.String("report", name), zap.Int("values", len(results)))
	return results, nil
}

// Reports lists the available report script names.
func (e *Engine) Reports() ([]string, error) {
	return e.runtime.ReportNames()
}

// reportSource adapts a QueryBuilder to the runtime's Source.
type reportSource struct {
	q *QueryBuilder
}

func (r reportSource) Grid() *grid.Grid { return r.q.engine.grid }
func (r reportSource) Gear() byte       { return r.q.engine.gear }

func (r reportSource) TokensOf(kinds ...token.Kind) ([]token.Token, error) {
	return r.q.TokensOf(kinds...)
}

func (r reportSource) Neighbors(t token.Token, kinds ...token.Kind) ([]token.Token, error) {
	return r.q.Neighbors(t, kinds...)
}
