package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIAnalysis holds the two puzzle answers.
type CLIAnalysis struct {
	PartNumbers int `json:"part_numbers"`
	GearRatios  int `json:"gear_ratios"`
}

// CLIToken is a JSON-friendly token representation.
type CLIToken struct {
	Kind           string `json:"kind"`
	Line           int    `json:"line"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	Text           string `json:"text"`
	Value          *int   `json:"value,omitempty"`
	SymbolNeighbor bool   `json:"symbol_neighbor"`
	Degree         int    `json:"degree"`
}

// CLICell is a border coordinate with its character.
type CLICell struct {
	Line  int    `json:"line"`
	Col   int    `json:"col"`
	Char  string `json:"char,omitempty"` // empty when absent
	Token string `json:"token,omitempty"`
}

// CLIGear is a JSON-friendly gear.
type CLIGear struct {
	Line    int      `json:"line"`
	Col     int      `json:"col"`
	Numbers [2]int   `json:"numbers"`
	Ratio   int      `json:"ratio"`
	Tokens  []string `json:"tokens"`
}

// CLISummary is a JSON-friendly grid summary.
type CLISummary struct {
	Height        int            `json:"height"`
	Width         int            `json:"width"`
	Tokens        int            `json:"tokens"`
	Numbers       int            `json:"numbers"`
	Symbols       int            `json:"symbols"`
	SymbolChars   map[string]int `json:"symbol_chars"`
	PartNumbers   int            `json:"part_numbers"`
	LoneNumbers   int            `json:"lone_numbers"`
	Gears         int            `json:"gears"`
	PartNumberSum int            `json:"part_number_sum"`
	GearRatioSum  int            `json:"gear_ratio_sum"`
}

// CLIGraph is a JSON-friendly adjacency graph.
type CLIGraph struct {
	Nodes []CLIGraphNode `json:"nodes"`
	Edges []CLIGraphEdge `json:"edges"`
}

// CLIGraphNode is a token in the adjacency graph.
type CLIGraphNode struct {
	Token  string `json:"token"`
	Text   string `json:"text"`
	Degree int    `json:"degree"`
}

// CLIGraphEdge joins two adjacent tokens.
type CLIGraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CLICluster is the BFS neighborhood of a token.
type CLICluster struct {
	Root     string           `json:"root"`
	Nodes    []CLIClusterNode `json:"nodes"`
	MaxDepth int              `json:"max_depth"`
}

// CLIClusterNode is a token in a cluster with its distance from the root.
type CLIClusterNode struct {
	Token string `json:"token"`
	Text  string `json:"text"`
	Depth int    `json:"depth"`
}

// CLITokenDetail is a JSON-friendly token detail.
type CLITokenDetail struct {
	Token     CLIToken   `json:"token"`
	Border    []CLICell  `json:"border"`
	Neighbors []CLIToken `json:"neighbors"`
	Part      bool       `json:"part"`
	Gear      *CLIGear   `json:"gear,omitempty"`
}

// CLIReport holds the values a report script emitted.
type CLIReport struct {
	Name   string           `json:"name"`
	Values map[string]int64 `json:"values"`
}

// CLIReportList names the available report scripts.
type CLIReportList []string
