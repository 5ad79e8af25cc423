package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/schematic"
	"github.com/jward/schematic/internal/config"
)

func init() {
	color.NoColor = true
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))

	err := validateFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestParseIntArg(t *testing.T) {
	t.Parallel()
	n, err := parseIntArg("7", "line")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = parseIntArg("abc", "line")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid line")

	_, err = parseIntArg("-1", "col")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be non-negative")
}

func TestParsePosition(t *testing.T) {
	t.Parallel()
	line, col, err := parsePosition([]string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)

	_, _, err = parsePosition([]string{"2", "x"})
	assert.ErrorContains(t, err, "invalid col")
}

func TestParseKinds(t *testing.T) {
	t.Parallel()
	kinds, err := parseKinds("")
	require.NoError(t, err)
	assert.Nil(t, kinds)

	kinds, err = parseKinds("number")
	require.NoError(t, err)
	assert.Equal(t, []schematic.Kind{schematic.Number}, kinds)

	kinds, err = parseKinds("symbol")
	require.NoError(t, err)
	assert.Equal(t, []schematic.Kind{schematic.Symbol}, kinds)

	_, err = parseKinds("gear")
	assert.ErrorContains(t, err, `invalid kind "gear"`)
}

func TestBuildSort(t *testing.T) {
	defer func() { flagSort, flagOrder = "", "asc" }()

	flagSort, flagOrder = "", "asc"
	assert.Equal(t, schematic.Sort{Field: schematic.SortByPosition, Order: schematic.Asc}, buildSort())

	flagSort, flagOrder = "value", "desc"
	assert.Equal(t, schematic.Sort{Field: schematic.SortByValue, Order: schematic.Desc}, buildSort())

	flagSort, flagOrder = "degree", "sideways"
	assert.Equal(t, schematic.Sort{Field: schematic.SortByDegree, Order: schematic.Asc}, buildSort())

	flagSort = "kind"
	assert.Equal(t, schematic.SortByKind, buildSort().Field)
}

func TestBuildPagination(t *testing.T) {
	defer func() { flagLimit, flagOffset = 50, 0 }()
	flagLimit, flagOffset = 10, 20
	assert.Equal(t, schematic.Pagination{Limit: 10, Offset: 20}, buildPagination())
}

func TestOpenInput(t *testing.T) {
	t.Parallel()
	r, err := openInput("-")
	require.NoError(t, err)
	require.NoError(t, r.Close())

	path := filepath.Join(t.TempDir(), "grid.txt")
	require.NoError(t, os.WriteFile(path, []byte("1*\n"), 0o644))
	r, err = openInput(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = openInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "opening input")
}

// --- Converters ---

func newQuery(t *testing.T, text string) *schematic.QueryBuilder {
	t.Helper()
	e, err := schematic.New()
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	require.NoError(t, e.LoadString(t.Context(), text))
	return e.Query()
}

func TestTokensToCLI(t *testing.T) {
	t.Parallel()
	q := newQuery(t, "467..\n...*.\n..35.\n9....")

	tokens, err := q.TokensOf()
	require.NoError(t, err)
	out := tokensToCLI(q, tokens)
	require.Len(t, out, 4)

	assert.Equal(t, "number", out[0].Kind)
	assert.Equal(t, "467", out[0].Text)
	require.NotNil(t, out[0].Value)
	assert.Equal(t, 467, *out[0].Value)
	assert.True(t, out[0].SymbolNeighbor)

	assert.Equal(t, "symbol", out[1].Kind)
	assert.Equal(t, "*", out[1].Text)
	assert.Nil(t, out[1].Value)

	assert.Equal(t, "9", out[3].Text)
	assert.False(t, out[3].SymbolNeighbor)
}

func TestGearToCLI(t *testing.T) {
	t.Parallel()
	q := newQuery(t, "467..\n...*.\n..35.")
	gears, err := q.Gears()
	require.NoError(t, err)
	require.Len(t, gears, 1)

	g := gearToCLI(gears[0])
	assert.Equal(t, 1, g.Line)
	assert.Equal(t, 3, g.Col)
	assert.Equal(t, [2]int{467, 35}, g.Numbers)
	assert.Equal(t, 16345, g.Ratio)
	assert.Equal(t, []string{"number@0:0-2", "number@2:2-3"}, g.Tokens)
}

func TestDetailToCLI(t *testing.T) {
	t.Parallel()
	q := newQuery(t, "467..\n...*.\n..35.")
	d, err := q.TokenDetail(1, 3)
	require.NoError(t, err)
	require.NotNil(t, d)

	out := detailToCLI(d)
	assert.Equal(t, "symbol", out.Token.Kind)
	assert.Len(t, out.Neighbors, 2)
	require.NotNil(t, out.Gear)
	assert.Equal(t, 16345, out.Gear.Ratio)

	var tokens []string
	for _, c := range out.Border {
		if c.Token != "" {
			tokens = append(tokens, c.Token)
		}
	}
	assert.Contains(t, tokens, "number@0:0-2")
	assert.Contains(t, tokens, "number@2:2-3")
}

// --- Text Output ---

func TestOutputResultText_Analysis(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{
		Command: "analyze",
		Results: CLIAnalysis{PartNumbers: 4361, GearRatios: 467835},
	})
	require.NoError(t, err)
	assert.Equal(t, "Part 1: 4361\nPart 2: 467835\n", buf.String())
}

func TestOutputResultText_TokensWithFooter(t *testing.T) {
	t.Parallel()
	v := 467
	total := 3
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{
		Command: "tokens",
		Results: []CLIToken{
			{Kind: "number", Line: 0, Start: 0, End: 2, Text: "467", Value: &v, SymbolNeighbor: true, Degree: 1},
		},
		TotalCount: &total,
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "0-2")
	assert.Contains(t, out, "467")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "Showing 1 of 3 results")
}

func TestOutputResultText_NoFooterWhenComplete(t *testing.T) {
	t.Parallel()
	total := 1
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{
		Results:    []CLIGear{{Line: 1, Col: 3, Numbers: [2]int{467, 35}, Ratio: 16345}},
		TotalCount: &total,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "467 x 35")
	assert.NotContains(t, buf.String(), "Showing")
}

func TestOutputResultText_Cells(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: []CLICell{
		{Line: 0, Col: 3, Char: "*"},
		{Line: 0, Col: 4},
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "*")
	assert.Contains(t, buf.String(), "-")
}

func TestOutputResultText_Summary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: CLISummary{
		Height: 10, Width: 10, Tokens: 16, Numbers: 10, Symbols: 6,
		SymbolChars:   map[string]int{"*": 3, "#": 1},
		PartNumbers:   8,
		LoneNumbers:   2,
		Gears:         2,
		PartNumberSum: 4361,
		GearRatioSum:  467835,
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Schematic Summary")
	assert.Contains(t, out, "Size: 10 x 10")
	assert.Contains(t, out, "Part numbers: 8 (lone: 2)")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("#: 1")), bytes.Index(buf.Bytes(), []byte("*: 3")))
	assert.Contains(t, out, "Part 2: 467835")
}

func TestOutputResultText_Report(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: CLIReport{
		Name:   "symbols",
		Values: map[string]int64{"symbols_touching_numbers": 6, "symbols": 6},
	}})
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("symbols ")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("symbols_touching_numbers")))
}

func TestOutputResultText_ClusterAndGraph(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, outputResultText(&buf, CLIResult{Results: CLICluster{
		Root: "symbol@1:3-3",
		Nodes: []CLIClusterNode{
			{Token: "symbol@1:3-3", Text: "*", Depth: 0},
			{Token: "number@0:0-2", Text: "467", Depth: 1},
		},
	}}))
	assert.Equal(t, "* symbol@1:3-3\n  467 number@0:0-2\n", buf.String())

	buf.Reset()
	require.NoError(t, outputResultText(&buf, CLIResult{Results: CLIGraph{
		Nodes: []CLIGraphNode{{Token: "a", Text: "467"}, {Token: "b", Text: "*"}},
		Edges: []CLIGraphEdge{{From: "a", To: "b"}},
	}}))
	assert.Equal(t, "a (467) -- b (*)\n", buf.String())
}

func TestOutputResultText_NilAndUnsupported(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, outputResultText(&buf, CLIResult{Results: nil}))
	assert.Empty(t, buf.String())

	err := outputResultText(&buf, CLIResult{Results: 42})
	assert.ErrorContains(t, err, "unsupported result type")
}

func TestResultLen(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, resultLen(nil))
	assert.Equal(t, 2, resultLen([]CLIToken{{}, {}}))
	assert.Equal(t, 1, resultLen(CLISummary{}))
	assert.Equal(t, 3, resultLen(CLIReportList{"a", "b", "c"}))
}

func TestResolveSettings_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("gear = \"#\"\nformat = \"text\"\n"), 0o644))

	defer func() {
		flagConfig, flagFormat, flagGear = "", "json", "*"
		settings = config.Default()
	}()

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&flagFormat, "format", "json", "")
	cmd.Flags().StringVar(&flagGear, "gear", "*", "")
	cmd.Flags().StringVar(&flagIndex, "index", "memory", "")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "")
	cmd.Flags().StringVar(&flagScriptsDir, "scripts-dir", "", "")
	flagConfig = path

	require.NoError(t, resolveSettings(cmd))
	assert.Equal(t, "#", settings.Gear)
	assert.Equal(t, "text", settings.Format)
	assert.Equal(t, "text", flagFormat)

	require.NoError(t, cmd.Flags().Set("format", "JSON"))
	require.NoError(t, resolveSettings(cmd))
	assert.Equal(t, "json", settings.Format)
	assert.Equal(t, "#", settings.Gear)

	require.NoError(t, cmd.Flags().Set("gear", "ab"))
	assert.Error(t, resolveSettings(cmd))
}
