package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/store"
	"github.com/jward/schematic/internal/token"
)

// Source is the analyzed grid a report script runs against.
type Source interface {
	Grid() *grid.Grid
	// TokensOf returns tokens of the given kinds in row-major order; no kinds
	// means all tokens.
	TokensOf(kinds ...token.Kind) ([]token.Token, error)
	// Neighbors returns tokens of the given kinds bordering t.
	Neighbors(t token.Token, kinds ...token.Kind) ([]token.Token, error)
	Gear() byte
}

// Runtime embeds a Risor VM and exposes a Source to report scripts through
// host functions.
type Runtime struct {
	fsys   fs.FS
	store  *store.Store
	logger *zap.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS loads scripts, and resolves script imports, from fsys.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithStore exposes the SQLite token index to scripts as db_query.
func WithStore(s *store.Store) RuntimeOption {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithRuntimeLogger routes script log calls to l.
func WithRuntimeLogger(l *zap.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime. Scripts come from the WithRuntimeFS file
// system when given, else from the directory scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.fsys == nil && scriptsDir != "" {
		r.fsys = os.DirFS(scriptsDir)
	}
	return r
}

// Results holds the values a script reported through emit.
type Results map[string]int64

// RunScript loads and executes a Risor script against src with all standard
// globals plus any extras provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, src Source, extraGlobals map[string]any) (Results, error) {
	code, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, code, scriptPath, src, extraGlobals)
}

// RunSource executes Risor source code directly. Useful for testing without
// script files.
func (r *Runtime) RunSource(ctx context.Context, code string, src Source, extraGlobals map[string]any) (Results, error) {
	return r.eval(ctx, code, "<inline>", src, extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, code, label string, src Source, extraGlobals map[string]any) (Results, error) {
	results := make(Results)
	globals := r.buildGlobals(src, results, extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	r.logger.Debug("running script", zap.String("script", label))
	if _, err := risor.Eval(ctx, code, opts...); err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return results, nil
}

func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	if r.fsys == nil {
		return nil
	}
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	return importer.NewFSImporter(importer.FSImporterOptions{
		GlobalNames: names,
		SourceFS:    r.fsys,
		Extensions:  []string{".risor"},
	})
}

// LoadScript reads a script by its slash-separated path within the scripts
// source.
func (r *Runtime) LoadScript(name string) (string, error) {
	if r.fsys == nil {
		return "", fmt.Errorf("runtime: script %s: no scripts source configured", name)
	}
	data, err := fs.ReadFile(r.fsys, strings.TrimPrefix(filepath.ToSlash(name), "/"))
	if err != nil {
		return "", fmt.Errorf("runtime: script %s: %w", name, err)
	}
	return string(data), nil
}

// ReportScriptPath returns the path to a named report script.
func ReportScriptPath(name string) string {
	return path.Join("report", name+".risor")
}

// ReportNames lists the report scripts available from the configured source,
// sorted by name.
func (r *Runtime) ReportNames() ([]string, error) {
	if r.fsys == nil {
		return nil, nil
	}
	matches, err := fs.Glob(r.fsys, "report/*.risor")
	if err != nil {
		return nil, fmt.Errorf("runtime: list reports: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".risor"))
	}
	sort.Strings(names)
	return names, nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(src Source, results Results, extra map[string]any) map[string]any {
	globals := map[string]any{
		"emit": makeEmitFn(results),
		"log":  mustProxy(&logObject{logger: r.logger}),
	}

	if src != nil {
		g := src.Grid()
		globals["gear"] = object.NewString(string([]byte{src.Gear()}))
		globals["width"] = object.NewInt(int64(g.Width()))
		globals["height"] = object.NewInt(int64(g.Height()))
		globals["tokens"] = makeTokensFn(src)
		globals["token_text"] = makeTokenTextFn(g)
		globals["token_value"] = makeTokenValueFn(g)
		globals["char_at"] = makeCharAtFn(g)
		globals["border"] = makeBorderFn(g)
		globals["has_symbol_neighbor"] = makeHasSymbolNeighborFn(g)
		globals["neighbors"] = makeNeighborsFn(src)
	}

	// Expose the SQLite index if the engine runs on it.
	if r.store != nil {
		globals["db_query"] = makeDBQueryFn(r.store)
	}

	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
