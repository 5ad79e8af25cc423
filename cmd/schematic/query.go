package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/schematic"
)

var (
	flagLimit  int
	flagOffset int
	flagSort   string
	flagOrder  string
	flagKind   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query tokens and adjacency in a schematic",
	Long:  "Run queries against a schematic read from --input (default stdin). All line and column numbers are 0-based.",
}

func init() {
	queryCmd.PersistentFlags().IntVar(&flagLimit, "limit", 50, "pagination limit (max 500)")
	queryCmd.PersistentFlags().IntVar(&flagOffset, "offset", 0, "pagination offset")
	queryCmd.PersistentFlags().StringVar(&flagSort, "sort", "", "sort field: position|value|kind|degree")
	queryCmd.PersistentFlags().StringVar(&flagOrder, "order", "asc", "sort order: asc|desc")

	queryCmd.AddCommand(tokensCmd)
	queryCmd.AddCommand(summaryCmd)
	queryCmd.AddCommand(tokenAtCmd)
	queryCmd.AddCommand(borderCmd)
	queryCmd.AddCommand(neighborsCmd)
	queryCmd.AddCommand(partsCmd)
	queryCmd.AddCommand(gearsCmd)
	queryCmd.AddCommand(graphCmd)
	queryCmd.AddCommand(clusterCmd)
	queryCmd.AddCommand(detailCmd)
}

// --- Helpers ---

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// parsePosition parses <line> <col> positional args.
func parsePosition(args []string) (int, int, error) {
	line, err := parseIntArg(args[0], "line")
	if err != nil {
		return 0, 0, err
	}
	col, err := parseIntArg(args[1], "col")
	if err != nil {
		return 0, 0, err
	}
	return line, col, nil
}

// parseKinds converts the --kind flag to token kinds. Empty means all.
func parseKinds(value string) ([]schematic.Kind, error) {
	switch value {
	case "":
		return nil, nil
	case "number":
		return []schematic.Kind{schematic.Number}, nil
	case "symbol":
		return []schematic.Kind{schematic.Symbol}, nil
	default:
		return nil, fmt.Errorf("invalid kind %q: must be number or symbol", value)
	}
}

// tokenAt resolves <line> <col> to the token covering it.
func tokenAt(q *schematic.QueryBuilder, args []string) (schematic.Token, error) {
	line, col, err := parsePosition(args)
	if err != nil {
		return schematic.Token{}, err
	}
	tok, err := q.TokenAt(line, col)
	if err != nil {
		return schematic.Token{}, fmt.Errorf("looking up token: %w", err)
	}
	if tok == nil {
		return schematic.Token{}, fmt.Errorf("no token at %d:%d", line, col)
	}
	return *tok, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes the error in the selected format and returns it so the
// command exits non-zero.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// buildPagination creates a Pagination from CLI flags.
func buildPagination() schematic.Pagination {
	return schematic.Pagination{
		Limit:  flagLimit,
		Offset: flagOffset,
	}
}

// buildSort creates a Sort from CLI flags.
func buildSort() schematic.Sort {
	var field schematic.SortField
	switch flagSort {
	case "value":
		field = schematic.SortByValue
	case "kind":
		field = schematic.SortByKind
	case "degree":
		field = schematic.SortByDegree
	default:
		field = schematic.SortByPosition
	}

	var order schematic.SortOrder
	switch flagOrder {
	case "desc":
		order = schematic.Desc
	default:
		order = schematic.Asc
	}

	return schematic.Sort{Field: field, Order: order}
}

// --- Converters ---

func tokenResultToCLI(r schematic.TokenResult) CLIToken {
	return CLIToken{
		Kind:           r.Kind.String(),
		Line:           r.Line,
		Start:          r.Start,
		End:            r.End,
		Text:           r.Text,
		Value:          r.Value,
		SymbolNeighbor: r.SymbolNeighbor,
		Degree:         r.Degree,
	}
}

func tokenResultsToCLI(rs []schematic.TokenResult) []CLIToken {
	out := make([]CLIToken, 0, len(rs))
	for _, r := range rs {
		out = append(out, tokenResultToCLI(r))
	}
	return out
}

// tokensToCLI converts bare tokens, filling text and value from g.
func tokensToCLI(q *schematic.QueryBuilder, tokens []schematic.Token) []CLIToken {
	g := q.Grid()
	out := make([]CLIToken, 0, len(tokens))
	for _, t := range tokens {
		ct := CLIToken{
			Kind:           t.Kind.String(),
			Line:           t.Line,
			Start:          t.Start,
			End:            t.End,
			Text:           t.Text(g),
			SymbolNeighbor: q.HasSymbolNeighbor(t),
		}
		if t.Kind == schematic.Number {
			v := t.MustValue(g)
			ct.Value = &v
		}
		out = append(out, ct)
	}
	return out
}

func gearToCLI(g schematic.Gear) CLIGear {
	return CLIGear{
		Line:    g.Symbol.Line,
		Col:     g.Symbol.Start,
		Numbers: g.Values,
		Ratio:   g.Ratio,
		Tokens:  []string{g.Numbers[0].String(), g.Numbers[1].String()},
	}
}

func summaryToCLI(s *schematic.Summary) CLISummary {
	return CLISummary{
		Height:        s.Height,
		Width:         s.Width,
		Tokens:        s.Tokens,
		Numbers:       s.Numbers,
		Symbols:       s.Symbols,
		SymbolChars:   s.SymbolChars,
		PartNumbers:   s.PartNumbers,
		LoneNumbers:   s.LoneNumbers,
		Gears:         s.Gears,
		PartNumberSum: s.PartNumberSum,
		GearRatioSum:  s.GearRatioSum,
	}
}

func detailToCLI(d *schematic.TokenDetail) CLITokenDetail {
	border := make([]CLICell, 0, len(d.Border))
	for _, c := range d.Border {
		cell := CLICell{Line: c.Line, Col: c.Col, Char: c.Char}
		if c.Token != nil {
			cell.Token = c.Token.String()
		}
		border = append(border, cell)
	}
	out := CLITokenDetail{
		Token:     tokenResultToCLI(d.Token),
		Border:    border,
		Neighbors: tokenResultsToCLI(d.Neighbors),
		Part:      d.Part,
	}
	if d.Gear != nil {
		g := gearToCLI(*d.Gear)
		out.Gear = &g
	}
	return out
}

// --- Lookup Commands ---

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List tokens with filtering, sorting and pagination",
	Args:  cobra.NoArgs,
	RunE:  runTokens,
}

var tokenAtCmd = &cobra.Command{
	Use:   "at <line> <col>",
	Short: "Show the token covering a cell",
	Args:  cobra.ExactArgs(2),
	RunE:  runTokenAt,
}

var borderCmd = &cobra.Command{
	Use:   "border <line> <col>",
	Short: "List the border cells of the token at a cell",
	Args:  cobra.ExactArgs(2),
	RunE:  runBorder,
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <line> <col>",
	Short: "List tokens bordering the token at a cell",
	Args:  cobra.ExactArgs(2),
	RunE:  runNeighbors,
}

func init() {
	tokensCmd.Flags().StringVar(&flagKind, "kind", "", "filter by kind: number|symbol")
	tokensCmd.Flags().String("chars", "", "only symbols whose character is in this set")
	tokensCmd.Flags().Int("line", -1, "only tokens on this line")
	tokensCmd.Flags().Bool("parts", false, "only numbers touching a symbol")
	tokensCmd.Flags().Bool("lone", false, "only numbers touching nothing")

	neighborsCmd.Flags().StringVar(&flagKind, "kind", "", "filter by kind: number|symbol")
}

func runTokens(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(flagKind)
	if err != nil {
		return outputError("tokens", err)
	}
	filter := schematic.TokenFilter{Kinds: kinds}
	filter.Chars, _ = cmd.Flags().GetString("chars")
	if line, _ := cmd.Flags().GetInt("line"); line >= 0 {
		filter.Line = &line
	}
	parts, _ := cmd.Flags().GetBool("parts")
	lone, _ := cmd.Flags().GetBool("lone")
	switch {
	case parts && lone:
		return outputError("tokens", fmt.Errorf("--parts and --lone are mutually exclusive"))
	case parts:
		filter.Parts = &parts
	case lone:
		f := false
		filter.Parts = &f
	}

	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("tokens", err)
	}
	defer engine.Close()

	res, err := engine.Query().Tokens(filter, buildSort(), buildPagination())
	if err != nil {
		return outputError("tokens", err)
	}
	return outputResult(CLIResult{
		Command:    "tokens",
		Results:    tokenResultsToCLI(res.Items),
		TotalCount: &res.TotalCount,
	})
}

func runTokenAt(cmd *cobra.Command, args []string) error {
	line, col, err := parsePosition(args)
	if err != nil {
		return outputError("at", err)
	}
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("at", err)
	}
	defer engine.Close()

	q := engine.Query()
	tok, err := q.TokenAt(line, col)
	if err != nil {
		return outputError("at", err)
	}
	var result any
	if tok != nil {
		result = tokensToCLI(q, []schematic.Token{*tok})[0]
	}
	return outputResult(CLIResult{Command: "at", Results: result})
}

func runBorder(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("border", err)
	}
	defer engine.Close()

	q := engine.Query()
	tok, err := tokenAt(q, args)
	if err != nil {
		return outputError("border", err)
	}
	g := q.Grid()
	cells := []CLICell{}
	for _, c := range q.Border(tok) {
		cell := CLICell{Line: c.Line, Col: c.Col}
		if ch, ok := g.CharAt(c.Line, c.Col); ok {
			cell.Char = string([]byte{ch})
		}
		cells = append(cells, cell)
	}
	return outputResult(CLIResult{Command: "border", Results: cells})
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(flagKind)
	if err != nil {
		return outputError("neighbors", err)
	}
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("neighbors", err)
	}
	defer engine.Close()

	q := engine.Query()
	tok, err := tokenAt(q, args)
	if err != nil {
		return outputError("neighbors", err)
	}
	ns, err := q.Neighbors(tok, kinds...)
	if err != nil {
		return outputError("neighbors", err)
	}
	return outputResult(CLIResult{Command: "neighbors", Results: tokensToCLI(q, ns)})
}
