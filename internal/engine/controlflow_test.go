package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisgrid/veritas/internal/models"
)

func TestLevenshtein(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.a+"/"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.expected, levenshtein(tc.a, tc.b))
		})
	}
}

func TestSignatureSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, signatureSimilarity("SCLE", "SCLE"), 1e-9)
	assert.InDelta(t, 1.0, signatureSimilarity("", ""), 1e-9)
	assert.InDelta(t, 0.0, signatureSimilarity("SCLE", ""), 1e-9)
	assert.InDelta(t, 2.0/3.0, signatureSimilarity("SCS", "SCL"), 1e-9)
}

func TestBuildGoCFGBranch(t *testing.T) {
	src := `package main

func pick(n int) int {
	if n > 0 {
		return n
	}
	return -n
}
`
	g, err := buildGoCFG(src)
	require.NoError(t, err)

	assert.Equal(t, "SCSSSE", cfgSignature(g))
	assert.Equal(t, models.CFGStart, g.Nodes[0].Kind)
	assert.Equal(t, models.CFGEnd, g.Nodes[len(g.Nodes)-1].Kind)

	m := graphMetrics(g)
	assert.Equal(t, 6, m.Nodes)
	assert.Equal(t, 6, m.Edges)
	assert.Equal(t, 2, m.Cyclomatic)
	assert.Equal(t, 1, m.DecisionPoints)
}

func TestBuildGoCFGLoopBackEdge(t *testing.T) {
	src := `package main

func spin() {
	for {
	}
}
`
	g, err := buildGoCFG(src)
	require.NoError(t, err)

	var loop *models.CFGNode
	for i := range g.Nodes {
		if g.Nodes[i].Kind == models.CFGLoop {
			loop = &g.Nodes[i]
		}
	}
	require.NotNil(t, loop)
	assert.Contains(t, loop.Edges, loop.ID, "loop body must flow back to the loop header")

	m := graphMetrics(g)
	assert.Equal(t, 2, m.Cyclomatic)
}

func TestBuildGoCFGRenamingInvariant(t *testing.T) {
	src1 := `package main

func count(items []int) int {
	n := 0
	for _, it := range items {
		if it > 0 {
			n++
		}
	}
	return n
}
`
	src2 := `package main

func tally(rows []int) int {
	acc := 0
	for _, r := range rows {
		if r > 100 {
			acc++
		}
	}
	return acc
}
`
	g1, err := buildGoCFG(src1)
	require.NoError(t, err)
	g2, err := buildGoCFG(src2)
	require.NoError(t, err)

	assert.Equal(t, cfgSignature(g1), cfgSignature(g2))
}

func TestBuildGoCFGSwitch(t *testing.T) {
	src := `package main

func grade(score int) string {
	switch {
	case score > 90:
		return "A"
	case score > 80:
		return "B"
	default:
		return "C"
	}
}
`
	g, err := buildGoCFG(src)
	require.NoError(t, err)

	conditions := 0
	for i := range g.Nodes {
		if g.Nodes[i].Kind == models.CFGCondition {
			conditions++
		}
	}
	assert.Equal(t, 1, conditions)
	assert.GreaterOrEqual(t, graphMetrics(g).Cyclomatic, 3)
}

func TestBuildGoCFGFallsBackOnBadSource(t *testing.T) {
	g, err := buildGoCFG("this is not go at all {{{")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, models.CFGEnd, g.Nodes[len(g.Nodes)-1].Kind)
}

func TestBuildTextCFG(t *testing.T) {
	src := `total = 0
if total:
    total = 1
while total:
    total -= 1
`
	g := buildTextCFG(src, LangPython)

	sig := cfgSignature(g)
	assert.True(t, strings.ContainsRune(sig, 'C'), "expected a condition node in %q", sig)
	assert.True(t, strings.ContainsRune(sig, 'L'), "expected a loop node in %q", sig)

	// The keyword scan produces a linear chain, so exactly one path.
	assert.Equal(t, len(g.Nodes)-1, g.EdgeCount())
	assert.Equal(t, 1, graphMetrics(g).Cyclomatic)
}

func TestCompareControlFlow(t *testing.T) {
	branchy := `package main

func f(n int) int {
	if n > 0 {
		return n
	}
	for i := 0; i < n; i++ {
		n += i
	}
	return n
}
`
	straight := `package main

func g(n int) int {
	return n + 1
}
`

	t.Run("identical source is a perfect match", func(t *testing.T) {
		res := compareControlFlow(goAnalyzer{}, branchy, branchy)
		assert.InDelta(t, 1.0, res.Score, 1e-9)
		assert.InDelta(t, confidenceControlFlow, res.Confidence, 1e-9)
		assert.Equal(t, true, res.Details["identical_structure"])
	})

	t.Run("different shapes score lower", func(t *testing.T) {
		res := compareControlFlow(goAnalyzer{}, branchy, straight)
		assert.Less(t, res.Score, 1.0)
		assert.Equal(t, false, res.Details["identical_structure"])
	})
}
