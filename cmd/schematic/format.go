package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	answerColor  = color.New(color.FgGreen, color.Bold)
)

// formatAnalysisText prints the two answers as "Part 1: N" / "Part 2: N".
func formatAnalysisText(w io.Writer, a CLIAnalysis) {
	fmt.Fprintf(w, "Part 1: %s\n", answerColor.Sprint(a.PartNumbers))
	fmt.Fprintf(w, "Part 2: %s\n", answerColor.Sprint(a.GearRatios))
}

// formatTokensText formats CLIToken results as aligned columns.
func formatTokensText(w io.Writer, tokens []CLIToken) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tLINE\tCOLS\tTEXT\tPART\tDEGREE")
	for _, t := range tokens {
		part := ""
		if t.Kind == "number" && t.SymbolNeighbor {
			part = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d-%d\t%s\t%s\t%d\n",
			t.Kind, t.Line, t.Start, t.End, t.Text, part, t.Degree)
	}
	tw.Flush()
}

// formatCellsText formats border cells as aligned columns. Absent cells
// print as "-".
func formatCellsText(w io.Writer, cells []CLICell) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tCOL\tCHAR\tTOKEN")
	for _, c := range cells {
		ch := c.Char
		if ch == "" {
			ch = "-"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", c.Line, c.Col, ch, c.Token)
	}
	tw.Flush()
}

// formatGearsText formats CLIGear results as aligned columns.
func formatGearsText(w io.Writer, gears []CLIGear) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tCOL\tNUMBERS\tRATIO")
	for _, g := range gears {
		fmt.Fprintf(tw, "%d\t%d\t%d x %d\t%d\n", g.Line, g.Col, g.Numbers[0], g.Numbers[1], g.Ratio)
	}
	tw.Flush()
}

// formatSummaryText formats CLISummary as readable text.
func formatSummaryText(w io.Writer, s CLISummary) {
	headingColor.Fprintln(w, "Schematic Summary")
	fmt.Fprintln(w, "=================")
	fmt.Fprintf(w, "Size: %d x %d\n", s.Height, s.Width)
	fmt.Fprintf(w, "Tokens: %d (%d numbers, %d symbols)\n", s.Tokens, s.Numbers, s.Symbols)
	fmt.Fprintf(w, "Part numbers: %d (lone: %d)\n", s.PartNumbers, s.LoneNumbers)
	fmt.Fprintf(w, "Gears: %d\n", s.Gears)
	fmt.Fprintln(w)

	if len(s.SymbolChars) > 0 {
		headingColor.Fprintln(w, "Symbols:")
		chars := make([]string, 0, len(s.SymbolChars))
		for c := range s.SymbolChars {
			chars = append(chars, c)
		}
		sort.Strings(chars)
		for _, c := range chars {
			fmt.Fprintf(w, "  %s: %d\n", c, s.SymbolChars[c])
		}
		fmt.Fprintln(w)
	}

	formatAnalysisText(w, CLIAnalysis{PartNumbers: s.PartNumberSum, GearRatios: s.GearRatioSum})
}

// formatGraphText prints one edge per line.
func formatGraphText(w io.Writer, g CLIGraph) {
	text := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		text[n.Token] = n.Text
	}
	for _, e := range g.Edges {
		fmt.Fprintf(w, "%s (%s) -- %s (%s)\n", e.From, text[e.From], e.To, text[e.To])
	}
}

// formatClusterText prints the cluster indented by depth.
func formatClusterText(w io.Writer, c CLICluster) {
	for _, n := range c.Nodes {
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", n.Depth), n.Text, n.Token)
	}
}

// formatDetailText formats CLITokenDetail as readable text.
func formatDetailText(w io.Writer, d CLITokenDetail) {
	headingColor.Fprintf(w, "%s %q\n", d.Token.Kind, d.Token.Text)
	fmt.Fprintf(w, "Line %d, cols %d-%d\n", d.Token.Line, d.Token.Start, d.Token.End)
	if d.Token.Kind == "number" {
		fmt.Fprintf(w, "Part number: %t\n", d.Part)
	}
	if d.Gear != nil {
		fmt.Fprintf(w, "Gear: %d x %d = %d\n", d.Gear.Numbers[0], d.Gear.Numbers[1], d.Gear.Ratio)
	}
	fmt.Fprintln(w)

	headingColor.Fprintln(w, "Border:")
	formatCellsText(w, d.Border)
	fmt.Fprintln(w)

	if len(d.Neighbors) > 0 {
		headingColor.Fprintln(w, "Neighbors:")
		formatTokensText(w, d.Neighbors)
	}
}

// formatReportText prints emitted values sorted by name.
func formatReportText(w io.Writer, r CLIReport) {
	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%d\n", name, r.Values[name])
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIAnalysis:
		formatAnalysisText(w, v)
	case []CLIToken:
		formatTokensText(w, v)
	case CLIToken:
		formatTokensText(w, []CLIToken{v})
	case []CLICell:
		formatCellsText(w, v)
	case []CLIGear:
		formatGearsText(w, v)
	case CLISummary:
		formatSummaryText(w, v)
	case CLIGraph:
		formatGraphText(w, v)
	case CLICluster:
		formatClusterText(w, v)
	case CLITokenDetail:
		formatDetailText(w, v)
	case CLIReport:
		formatReportText(w, v)
	case CLIReportList:
		for _, name := range v {
			fmt.Fprintln(w, name)
		}
	case nil:
		// No output for nil results (e.g., at with no match).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Pagination footer.
	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}

	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLIToken:
		return len(r)
	case []CLICell:
		return len(r)
	case []CLIGear:
		return len(r)
	case CLIReportList:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
