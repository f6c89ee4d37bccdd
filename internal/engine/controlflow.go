package engine

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"sort"
	"strings"

	"github.com/praxisgrid/veritas/internal/models"
)

// Weights of the control flow layer score and of the metrics composite.
const (
	weightSignature    = 0.7
	weightGraphMetrics = 0.3
	weightCyclomatic   = 0.4
	weightDecisions    = 0.4
	weightGraphSize    = 0.2
)

// cfgMetrics summarises a graph for coarse comparison.
type cfgMetrics struct {
	Nodes          int `json:"nodes"`
	Edges          int `json:"edges"`
	Cyclomatic     int `json:"cyclomatic_complexity"`
	DecisionPoints int `json:"decision_points"`
}

// compareControlFlow runs the control flow layer over one submission pair.
func compareControlFlow(an sourceAnalyzer, code1, code2 string) models.LayerResult {
	res := models.LayerResult{Layer: models.LayerControlFlow, Confidence: confidenceControlFlow}

	g1, err1 := an.BuildCFG(code1)
	g2, err2 := an.BuildCFG(code2)
	if err1 != nil || err2 != nil {
		err := err1
		if err == nil {
			err = err2
		}
		res.Confidence = 0
		res.Error = "control flow analysis failed: " + err.Error()
		return res
	}

	sig1 := cfgSignature(g1)
	sig2 := cfgSignature(g2)
	sigSim := signatureSimilarity(sig1, sig2)

	m1 := graphMetrics(g1)
	m2 := graphMetrics(g2)
	metricsSim := metricsSimilarity(m1, m2)

	res.Score = weightSignature*sigSim + weightGraphMetrics*metricsSim
	res.Details = map[string]any{
		"signature1":           sig1,
		"signature2":           sig2,
		"signature_similarity": sigSim,
		"metrics1":             m1,
		"metrics2":             m2,
		"metrics_similarity":   metricsSim,
		"identical_structure":  sig1 == sig2,
	}
	return res
}

// cfgSignature linearises a graph into a node kind string via depth first
// traversal from the entry node, successors in ascending ID order. Isomorphic
// graphs produce equal signatures regardless of build order.
func cfgSignature(g *models.ControlFlowGraph) string {
	if g == nil || len(g.Nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	visited := make(map[int]bool, len(g.Nodes))
	var walk func(id int)
	walk = func(id int) {
		if id < 0 || id >= len(g.Nodes) || visited[id] {
			return
		}
		visited[id] = true
		sb.WriteByte(kindLetter(g.Nodes[id].Kind))
		edges := append([]int(nil), g.Nodes[id].Edges...)
		sort.Ints(edges)
		for _, next := range edges {
			walk(next)
		}
	}
	walk(0)
	return sb.String()
}

func kindLetter(kind models.CFGNodeKind) byte {
	switch kind {
	case models.CFGCondition:
		return 'C'
	case models.CFGLoop:
		return 'L'
	case models.CFGEnd:
		return 'E'
	default:
		// start and plain statements share a letter
		return 'S'
	}
}

// signatureSimilarity compares two signatures by edit distance, normalised
// to [0,1]. Equal signatures are a perfect match even when both are empty;
// a single empty signature matches nothing.
func signatureSimilarity(sig1, sig2 string) float64 {
	if sig1 == sig2 {
		return 1.0
	}
	if sig1 == "" || sig2 == "" {
		return 0.0
	}
	dist := levenshtein(sig1, sig2)
	return 1.0 - float64(dist)/float64(max(len(sig1), len(sig2)))
}

// levenshtein computes edit distance with the two row formulation.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func graphMetrics(g *models.ControlFlowGraph) cfgMetrics {
	m := cfgMetrics{Nodes: len(g.Nodes), Edges: g.EdgeCount()}
	m.Cyclomatic = m.Edges - m.Nodes + 2
	for i := range g.Nodes {
		switch g.Nodes[i].Kind {
		case models.CFGCondition, models.CFGLoop:
			m.DecisionPoints++
		}
	}
	return m
}

func metricsSimilarity(m1, m2 cfgMetrics) float64 {
	return weightCyclomatic*closeness(m1.Cyclomatic, m2.Cyclomatic) +
		weightDecisions*closeness(m1.DecisionPoints, m2.DecisionPoints) +
		weightGraphSize*closeness(m1.Nodes, m2.Nodes)
}

// buildGoCFG parses Go source and lowers every function body into the
// graph in declaration order. Unparseable source degrades to the keyword
// scan builder instead of failing the layer.
func buildGoCFG(src string) (*models.ControlFlowGraph, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return buildTextCFG(src, LangGo), nil
	}

	g := &models.ControlFlowGraph{}
	cur := g.AddNode(models.CFGStart)
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Body != nil {
			cur = lowerStmts(g, fn.Body.List, cur)
			continue
		}
		next := g.AddNode(models.CFGStatement)
		g.AddEdge(cur, next)
		cur = next
	}
	end := g.AddNode(models.CFGEnd)
	g.AddEdge(cur, end)
	return g, nil
}

func lowerStmts(g *models.ControlFlowGraph, stmts []ast.Stmt, entry int) int {
	cur := entry
	for _, s := range stmts {
		cur = lowerStmt(g, s, cur)
	}
	return cur
}

// lowerStmt appends the subgraph for one statement and returns its exit
// node. Branches reconverge on a merge node; loops get a back edge and a
// distinct exit node.
func lowerStmt(g *models.ControlFlowGraph, s ast.Stmt, cur int) int {
	switch st := s.(type) {
	case *ast.IfStmt:
		cond := g.AddNode(models.CFGCondition)
		g.AddEdge(cur, cond)
		thenEnd := lowerStmts(g, st.Body.List, cond)
		merge := g.AddNode(models.CFGStatement)
		g.AddEdge(thenEnd, merge)
		switch el := st.Else.(type) {
		case *ast.BlockStmt:
			elseEnd := lowerStmts(g, el.List, cond)
			g.AddEdge(elseEnd, merge)
		case *ast.IfStmt:
			elseEnd := lowerStmt(g, el, cond)
			g.AddEdge(elseEnd, merge)
		default:
			g.AddEdge(cond, merge)
		}
		return merge

	case *ast.ForStmt:
		return lowerLoop(g, st.Body.List, cur)

	case *ast.RangeStmt:
		return lowerLoop(g, st.Body.List, cur)

	case *ast.SwitchStmt:
		return lowerBranches(g, caseBodies(st.Body), cur)

	case *ast.TypeSwitchStmt:
		return lowerBranches(g, caseBodies(st.Body), cur)

	case *ast.SelectStmt:
		return lowerBranches(g, commBodies(st.Body), cur)

	case *ast.BlockStmt:
		return lowerStmts(g, st.List, cur)

	default:
		next := g.AddNode(models.CFGStatement)
		g.AddEdge(cur, next)
		return next
	}
}

func lowerLoop(g *models.ControlFlowGraph, body []ast.Stmt, cur int) int {
	loop := g.AddNode(models.CFGLoop)
	g.AddEdge(cur, loop)
	bodyEnd := lowerStmts(g, body, loop)
	g.AddEdge(bodyEnd, loop)
	exit := g.AddNode(models.CFGStatement)
	g.AddEdge(loop, exit)
	return exit
}

func lowerBranches(g *models.ControlFlowGraph, bodies [][]ast.Stmt, cur int) int {
	cond := g.AddNode(models.CFGCondition)
	g.AddEdge(cur, cond)
	merge := g.AddNode(models.CFGStatement)
	if len(bodies) == 0 {
		g.AddEdge(cond, merge)
		return merge
	}
	for _, body := range bodies {
		end := lowerStmts(g, body, cond)
		g.AddEdge(end, merge)
	}
	return merge
}

func caseBodies(block *ast.BlockStmt) [][]ast.Stmt {
	var bodies [][]ast.Stmt
	for _, s := range block.List {
		if clause, ok := s.(*ast.CaseClause); ok {
			bodies = append(bodies, clause.Body)
		}
	}
	return bodies
}

func commBodies(block *ast.BlockStmt) [][]ast.Stmt {
	var bodies [][]ast.Stmt
	for _, s := range block.List {
		if clause, ok := s.(*ast.CommClause); ok {
			bodies = append(bodies, clause.Body)
		}
	}
	return bodies
}

var (
	cfgScanC      = regexp.MustCompile(`\b(if|for|while|switch)\s*\(`)
	cfgScanPython = regexp.MustCompile(`\b(if|elif|for|while)\b`)
	cfgScanGo     = regexp.MustCompile(`\b(if|for|switch|select)\b`)
)

// buildTextCFG approximates a control flow graph by scanning for control
// keywords in source order. Plain text between keywords becomes a statement
// node. The result is a linear chain: the scan cannot see loop extents, so
// no back edges are added.
func buildTextCFG(src, language string) *models.ControlFlowGraph {
	stripped := stripComments(src, language)
	stripped = dquoted.ReplaceAllString(stripped, `""`)
	stripped = squoted.ReplaceAllString(stripped, `''`)

	var scan *regexp.Regexp
	switch language {
	case LangPython:
		scan = cfgScanPython
	case LangGo:
		scan = cfgScanGo
	default:
		scan = cfgScanC
	}

	g := &models.ControlFlowGraph{}
	cur := g.AddNode(models.CFGStart)

	appendNode := func(kind models.CFGNodeKind) {
		next := g.AddNode(kind)
		g.AddEdge(cur, next)
		cur = next
	}

	last := 0
	for _, loc := range scan.FindAllStringSubmatchIndex(stripped, -1) {
		if strings.TrimSpace(stripped[last:loc[0]]) != "" {
			appendNode(models.CFGStatement)
		}
		switch stripped[loc[2]:loc[3]] {
		case "for", "while":
			appendNode(models.CFGLoop)
		default:
			appendNode(models.CFGCondition)
		}
		last = loc[1]
	}
	if strings.TrimSpace(stripped[last:]) != "" {
		appendNode(models.CFGStatement)
	}

	appendNode(models.CFGEnd)
	return g
}
