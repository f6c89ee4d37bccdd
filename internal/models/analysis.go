package models

// StructuralFeatures summarises the parse tree of one submission
type StructuralFeatures struct {
	NodeCount      int            `json:"node_count"`
	MaxDepth       int            `json:"max_depth"`
	NodeTypes      map[string]int `json:"node_types"`
	FunctionCount  int            `json:"function_count"`
	LoopCount      int            `json:"loop_count"`
	ConditionCount int            `json:"condition_count"`
	FunctionCalls  []string       `json:"function_calls,omitempty"`
	ControlPattern string         `json:"control_pattern"`
	StructuralHash string         `json:"structural_hash"`
}

// FingerprintSet is the winnowed hash selection for one token stream
type FingerprintSet map[uint64]struct{}

// CFGNodeKind classifies a control flow graph vertex
type CFGNodeKind string

const (
	CFGStart     CFGNodeKind = "start"
	CFGEnd       CFGNodeKind = "end"
	CFGStatement CFGNodeKind = "statement"
	CFGCondition CFGNodeKind = "condition"
	CFGLoop      CFGNodeKind = "loop"
)

// CFGNode is one vertex in a control flow graph. Edges hold successor IDs.
type CFGNode struct {
	ID    int         `json:"id"`
	Kind  CFGNodeKind `json:"kind"`
	Edges []int       `json:"edges,omitempty"`
}

// ControlFlowGraph is a flat arena of nodes where a node's ID is its index
type ControlFlowGraph struct {
	Nodes []CFGNode `json:"nodes"`
}

// AddNode appends a node of the given kind and returns its ID.
func (g *ControlFlowGraph) AddNode(kind CFGNodeKind) int {
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, CFGNode{ID: id, Kind: kind})
	return id
}

// AddEdge links node from to node to. Out of range IDs are ignored.
func (g *ControlFlowGraph) AddEdge(from, to int) {
	if from < 0 || from >= len(g.Nodes) || to < 0 || to >= len(g.Nodes) {
		return
	}
	g.Nodes[from].Edges = append(g.Nodes[from].Edges, to)
}

// EdgeCount returns the total number of edges in the graph.
func (g *ControlFlowGraph) EdgeCount() int {
	n := 0
	for i := range g.Nodes {
		n += len(g.Nodes[i].Edges)
	}
	return n
}
