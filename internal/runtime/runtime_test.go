package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jward/schematic/internal/adjacency"
	"github.com/jward/schematic/internal/grid"
	"github.com/jward/schematic/internal/store"
	"github.com/jward/schematic/internal/token"
)

const sample = `467..114..
...*......
..35..633.
......#...
617*......
.....+.58.
..592.....
......755.
...$.*....
.664.598..`

// naiveSource answers queries with a linear scan over all tokens.
type naiveSource struct {
	g      *grid.Grid
	tokens []token.Token
}

func newNaiveSource(text string) *naiveSource {
	g := grid.Build(text)
	return &naiveSource{g: g, tokens: token.Tokenize(g)}
}

func (n *naiveSource) Grid() *grid.Grid { return n.g }
func (n *naiveSource) Gear() byte       { return '*' }

func (n *naiveSource) TokensOf(kinds ...token.Kind) ([]token.Token, error) {
	if len(kinds) == 0 {
		return n.tokens, nil
	}
	var out []token.Token
	for _, k := range kinds {
		out = append(out, token.Filter(n.tokens, k)...)
	}
	return out, nil
}

func (n *naiveSource) Neighbors(t token.Token, kinds ...token.Kind) ([]token.Token, error) {
	cands, _ := n.TokensOf(kinds...)
	return adjacency.NeighboringTokens(t, n.g, cands), nil
}

func run(t *testing.T, rt *Runtime, src Source, script string) Results {
	t.Helper()
	res, err := rt.RunSource(context.Background(), script, src, nil)
	require.NoError(t, err)
	return res
}

// --- Host function tests ---

func TestRunSource_Emit(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	res := run(t, rt, nil, `
emit("answer", 42)
emit("answer", 43)
emit("other", 1)
`)
	assert.Equal(t, Results{"answer": 43, "other": 1}, res)
}

func TestRunSource_EmitRejectsNonInt(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.RunSource(context.Background(), `emit("x", "nope")`, nil, nil)
	require.Error(t, err)
}

func TestRunSource_TokensAndText(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	src := newNaiveSource(sample)

	res := run(t, rt, src, `
all := tokens()
nums := tokens("number")
syms := tokens("symbol")
first := nums[0]
assert(token_text(first) == "467", 'got {token_text(first)}')
assert(first["kind"] == "number", "kind")
emit("all", len(all))
emit("numbers", len(nums))
emit("symbols", len(syms))
emit("first", token_value(first))
`)
	assert.Equal(t, int64(16), res["all"])
	assert.Equal(t, int64(10), res["numbers"])
	assert.Equal(t, int64(6), res["symbols"])
	assert.Equal(t, int64(467), res["first"])
}

func TestRunSource_TokensBadKind(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.RunSource(context.Background(), `tokens("gear")`, newNaiveSource(sample), nil)
	require.Error(t, err)
}

func TestRunSource_TokenValueOnSymbolFails(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.RunSource(context.Background(), `token_value(tokens("symbol")[0])`, newNaiveSource(sample), nil)
	require.Error(t, err)
}

func TestRunSource_CharAt(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	res := run(t, rt, newNaiveSource("ab\nc"), `
assert(char_at(0, 1) == "b", "b")
assert(char_at(1, 1) == nil, "short row")
assert(char_at(5, 0) == nil, "past last row")
emit("w", width)
emit("h", height)
`)
	assert.Equal(t, Results{"w": 2, "h": 2}, res)
}

func TestRunSource_BorderAndNeighbors(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	res := run(t, rt, newNaiveSource(sample), `
star := tokens("symbol")[0]
assert(gear == "*", "gear")
cells := border(star)
nums := neighbors(star, "number")
everything := neighbors(star)
emit("cells", len(cells))
emit("numbers", len(nums))
emit("everything", len(everything))
emit("product", token_value(nums[0]) * token_value(nums[1]))
emit("first_line", cells[0]["line"])
`)
	assert.Equal(t, int64(8), res["cells"])
	assert.Equal(t, int64(2), res["numbers"])
	assert.Equal(t, int64(2), res["everything"])
	assert.Equal(t, int64(467*35), res["product"])
	assert.Equal(t, int64(0), res["first_line"])
}

func TestRunSource_HasSymbolNeighbor(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	res := run(t, rt, newNaiveSource(sample), `
nums := tokens("number")
emit("467", 0)
emit("114", 0)
if has_symbol_neighbor(nums[0]) {
    emit("467", 1)
}
if has_symbol_neighbor(nums[1]) {
    emit("114", 1)
}
`)
	assert.Equal(t, Results{"467": 1, "114": 0}, res)
}

func TestRunSource_MalformedToken(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.RunSource(context.Background(), `border({"line": 0})`, newNaiveSource(sample), nil)
	require.Error(t, err)
}

func TestRunSource_ExtraGlobals(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	res, err := rt.RunSource(context.Background(), `emit("n", limit * 2)`, nil, map[string]any{"limit": 21})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res["n"])
}

func TestRunSource_LogRoutesToZap(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.InfoLevel)
	rt := NewRuntime("", WithRuntimeLogger(zap.New(core)))

	run(t, rt, nil, `log.Info("hello from script")`)
	require.Equal(t, 1, logs.FilterMessage("hello from script").Len())
}

func TestRunSource_DBQuery(t *testing.T) {
	t.Parallel()
	s, err := store.NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	src := newNaiveSource(sample)
	require.NoError(t, s.InsertTokens(src.tokens))

	rt := NewRuntime("", WithStore(s))
	res := run(t, rt, src, `
rows := db_query("SELECT COUNT(*) AS n FROM tokens WHERE kind = ?", "symbol")
emit("symbols", rows[0]["n"])
`)
	assert.Equal(t, int64(6), res["symbols"])

	_, err = rt.RunSource(context.Background(), `db_query("DELETE FROM tokens")`, src, nil)
	require.Error(t, err)

	res = run(t, rt, src, `
rows := db_query("WITH n AS (SELECT * FROM tokens WHERE line = ?) SELECT COUNT(*) AS c FROM n", 0)
emit("row0", rows[0]["c"])
emit("none", len(db_query("SELECT * FROM tokens WHERE line = ?", 99)))
`)
	assert.Equal(t, int64(2), res["row0"])
	assert.Equal(t, int64(0), res["none"])

	_, err = rt.RunSource(context.Background(), `db_query("SELECT * FROM tokens WHERE line = ?", 1.5)`, src, nil)
	require.ErrorContains(t, err, "expected int or string")
}

func TestRunSource_DBQueryAbsentWithoutStore(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.RunSource(context.Background(), `db_query("SELECT 1")`, newNaiveSource(sample), nil)
	require.Error(t, err)
}

// --- Script loading tests ---

func TestLoadScript_FromFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"report/count.risor": &fstest.MapFile{Data: []byte(`emit("count", len(tokens()))`)},
	}
	rt := NewRuntime("", WithRuntimeFS(fsys))

	src, err := rt.LoadScript(ReportScriptPath("count"))
	require.NoError(t, err)
	assert.Contains(t, src, "emit")

	res, err := rt.RunScript(context.Background(), ReportScriptPath("count"), newNaiveSource(sample), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(16), res["count"])
}

func TestLoadScript_FromDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "report"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report", "one.risor"), []byte(`emit("one", 1)`), 0o644))

	rt := NewRuntime(dir)
	res, err := rt.RunScript(context.Background(), ReportScriptPath("one"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res["one"])

	names, err := rt.ReportNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, names)
}

func TestLoadScript_Missing(t *testing.T) {
	t.Parallel()
	rt := NewRuntime(t.TempDir())
	_, err := rt.LoadScript(ReportScriptPath("nope"))
	require.Error(t, err)

	_, err = NewRuntime("").LoadScript(ReportScriptPath("nope"))
	require.Error(t, err)
}

func TestReportNames_FS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"report/b.risor":   &fstest.MapFile{Data: []byte(``)},
		"report/a.risor":   &fstest.MapFile{Data: []byte(``)},
		"report/notes.txt": &fstest.MapFile{Data: []byte(``)},
	}
	names, err := NewRuntime("", WithRuntimeFS(fsys)).ReportNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
