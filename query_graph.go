package schematic

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/jward/schematic/internal/token"
)

// Gear is a gear-character symbol bordering exactly two numbers.
type Gear struct {
	Symbol  Token
	Numbers [2]Token
	Values  [2]int
	Ratio   int // Values[0] * Values[1]
}

// Gears returns every gear in row-major order. Only Number neighbors are
// counted, so other symbols touching the gear do not disqualify it.
func (q *QueryBuilder) Gears() ([]Gear, error) {
	g := q.engine.grid
	symbols, err := q.TokensOf(token.Symbol)
	if err != nil {
		return nil, fmt.Errorf("gears: %w", err)
	}

	var gears []Gear
	for _, s := range symbols {
		if !isGear(s, g, q.engine.gear) {
			continue
		}
		numbers, err := q.Neighbors(s, token.Number)
		if err != nil {
			return nil, fmt.Errorf("gears: %w", err)
		}
		if len(numbers) != 2 {
			continue
		}
		a, b := numbers[0].MustValue(g), numbers[1].MustValue(g)
		gears = append(gears, Gear{
			Symbol:  s,
			Numbers: [2]Token{numbers[0], numbers[1]},
			Values:  [2]int{a, b},
			Ratio:   a * b,
		})
	}
	return gears, nil
}

// AdjacencyGraph is the derived token-to-token relation of the grid.
// Every token is a node; an edge joins two tokens whose borders touch.
type AdjacencyGraph struct {
	Nodes []GraphNode
	Edges []GraphEdge
}

// GraphNode is a token with its number of bordering tokens.
type GraphNode struct {
	Token  Token
	Text   string
	Degree int
}

// GraphEdge joins two adjacent tokens. From precedes To in row-major order,
// so each pair appears once.
type GraphEdge struct {
	From Token
	To   Token
}

// graphData holds the bulk-loaded adjacency lists keyed by span.
type graphData struct {
	tokens    []Token
	neighbors map[Span][]Token
}

// buildGraph loads every token and its neighbors once, so traversals do not
// query the index per step.
func (q *QueryBuilder) buildGraph() (*graphData, error) {
	tokens, err := q.TokensOf()
	if err != nil {
		return nil, fmt.Errorf("build graph: load tokens: %w", err)
	}
	data := &graphData{
		tokens:    tokens,
		neighbors: make(map[Span][]Token, len(tokens)),
	}
	for _, t := range tokens {
		ns, err := q.Neighbors(t)
		if err != nil {
			return nil, fmt.Errorf("build graph: %w", err)
		}
		data.neighbors[t.Span] = ns
	}
	return data, nil
}

func before(a, b Token) bool {
	return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Start, b.Start)) < 0
}

// AdjacencyGraph returns every token and every adjacent pair.
func (q *QueryBuilder) AdjacencyGraph() (*AdjacencyGraph, error) {
	data, err := q.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("adjacency graph: %w", err)
	}

	g := q.engine.grid
	result := &AdjacencyGraph{
		Nodes: make([]GraphNode, 0, len(data.tokens)),
		Edges: []GraphEdge{},
	}
	for _, t := range data.tokens {
		ns := data.neighbors[t.Span]
		result.Nodes = append(result.Nodes, GraphNode{Token: t, Text: t.Text(g), Degree: len(ns)})
		for _, n := range ns {
			if before(t, n) {
				result.Edges = append(result.Edges, GraphEdge{From: t, To: n})
			}
		}
	}
	return result, nil
}

// Cluster is the set of tokens reachable from a root through adjacency.
type Cluster struct {
	Root  Token
	Nodes []ClusterNode // root first, then by depth and position
	Depth int           // max depth reached (may be < maxDepth if the cluster is small)
}

// ClusterNode is a token with its distance from the cluster root.
type ClusterNode struct {
	Token Token
	Depth int // BFS depth from root (0 = root itself)
}

// Cluster walks the adjacency graph breadth-first from the token at
// (line, col) up to maxDepth steps. maxDepth of 0 returns only the root.
// Negative returns error. Capped at 100. Returns nil, nil if no token
// covers the cell.
func (q *QueryBuilder) Cluster(line, col, maxDepth int) (*Cluster, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("cluster: maxDepth must be non-negative, got %d", maxDepth)
	}
	if maxDepth > 100 {
		maxDepth = 100
	}

	root, err := q.TokenAt(line, col)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	if root == nil {
		return nil, nil
	}

	result := &Cluster{
		Root:  *root,
		Nodes: []ClusterNode{{Token: *root, Depth: 0}},
	}
	if maxDepth == 0 {
		return result, nil
	}

	data, err := q.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	visited := map[Span]int{root.Span: 0}
	queue := []ClusterNode{{Token: *root, Depth: 0}}
	var found []ClusterNode

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.Depth >= maxDepth {
			continue
		}

		for _, n := range data.neighbors[current.Token.Span] {
			if _, seen := visited[n.Span]; seen {
				continue
			}
			next := ClusterNode{Token: n, Depth: current.Depth + 1}
			visited[n.Span] = next.Depth
			result.Depth = max(result.Depth, next.Depth)
			found = append(found, next)
			queue = append(queue, next)
		}
	}

	slices.SortFunc(found, func(a, b ClusterNode) int {
		if a.Depth != b.Depth {
			return cmp.Compare(a.Depth, b.Depth)
		}
		return cmp.Or(cmp.Compare(a.Token.Line, b.Token.Line), cmp.Compare(a.Token.Start, b.Token.Start))
	})
	result.Nodes = append(result.Nodes, found...)
	return result, nil
}
