package main

import "github.com/spf13/cobra"

// --- Digest and Graph Commands ---

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show grid dimensions, token counts and both sums",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var partsCmd = &cobra.Command{
	Use:   "parts",
	Short: "List numbers touching a symbol",
	Args:  cobra.NoArgs,
	RunE:  runParts,
}

var gearsCmd = &cobra.Command{
	Use:   "gears",
	Short: "List gears and their ratios",
	Args:  cobra.NoArgs,
	RunE:  runGears,
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show every token and every adjacent pair",
	Args:  cobra.NoArgs,
	RunE:  runGraph,
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <line> <col>",
	Short: "Walk adjacency outward from the token at a cell",
	Long:  "Returns the tokens reachable through adjacency from the token at <line> <col>, up to --max-depth steps.",
	Args:  cobra.ExactArgs(2),
	RunE:  runCluster,
}

var detailCmd = &cobra.Command{
	Use:   "detail <line> <col>",
	Short: "Show a token with its border, neighbors and gear status",
	Args:  cobra.ExactArgs(2),
	RunE:  runDetail,
}

func init() {
	clusterCmd.Flags().Int("max-depth", 5, "maximum traversal depth (0-100)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("summary", err)
	}
	defer engine.Close()

	s, err := engine.Query().Summary()
	if err != nil {
		return outputError("summary", err)
	}
	return outputResult(CLIResult{Command: "summary", Results: summaryToCLI(s)})
}

func runParts(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("parts", err)
	}
	defer engine.Close()

	q := engine.Query()
	parts, err := q.PartNumbers()
	if err != nil {
		return outputError("parts", err)
	}
	total := len(parts)
	return outputResult(CLIResult{Command: "parts", Results: tokensToCLI(q, parts), TotalCount: &total})
}

func runGears(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("gears", err)
	}
	defer engine.Close()

	gears, err := engine.Query().Gears()
	if err != nil {
		return outputError("gears", err)
	}
	out := make([]CLIGear, 0, len(gears))
	for _, g := range gears {
		out = append(out, gearToCLI(g))
	}
	total := len(out)
	return outputResult(CLIResult{Command: "gears", Results: out, TotalCount: &total})
}

func runGraph(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("graph", err)
	}
	defer engine.Close()

	graph, err := engine.Query().AdjacencyGraph()
	if err != nil {
		return outputError("graph", err)
	}
	out := CLIGraph{
		Nodes: make([]CLIGraphNode, 0, len(graph.Nodes)),
		Edges: make([]CLIGraphEdge, 0, len(graph.Edges)),
	}
	for _, n := range graph.Nodes {
		out.Nodes = append(out.Nodes, CLIGraphNode{Token: n.Token.String(), Text: n.Text, Degree: n.Degree})
	}
	for _, e := range graph.Edges {
		out.Edges = append(out.Edges, CLIGraphEdge{From: e.From.String(), To: e.To.String()})
	}
	return outputResult(CLIResult{Command: "graph", Results: out})
}

func runCluster(cmd *cobra.Command, args []string) error {
	line, col, err := parsePosition(args)
	if err != nil {
		return outputError("cluster", err)
	}
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("cluster", err)
	}
	defer engine.Close()

	q := engine.Query()
	c, err := q.Cluster(line, col, maxDepth)
	if err != nil {
		return outputError("cluster", err)
	}
	if c == nil {
		return outputResult(CLIResult{Command: "cluster", Results: nil})
	}
	out := CLICluster{
		Root:     c.Root.String(),
		Nodes:    make([]CLIClusterNode, 0, len(c.Nodes)),
		MaxDepth: c.Depth,
	}
	for _, n := range c.Nodes {
		out.Nodes = append(out.Nodes, CLIClusterNode{
			Token: n.Token.String(),
			Text:  n.Token.Text(q.Grid()),
			Depth: n.Depth,
		})
	}
	return outputResult(CLIResult{Command: "cluster", Results: out})
}

func runDetail(cmd *cobra.Command, args []string) error {
	line, col, err := parsePosition(args)
	if err != nil {
		return outputError("detail", err)
	}
	engine, err := openEngine(cmd.Context(), flagInput)
	if err != nil {
		return outputError("detail", err)
	}
	defer engine.Close()

	d, err := engine.Query().TokenDetail(line, col)
	if err != nil {
		return outputError("detail", err)
	}
	var result any
	if d != nil {
		result = detailToCLI(d)
	}
	return outputResult(CLIResult{Command: "detail", Results: result})
}
