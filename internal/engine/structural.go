package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"regexp"
	"strings"

	"github.com/praxisgrid/veritas/internal/models"
)

// StructuralWeights blend the structural signals when the tree hashes
// differ. The values are empirical, not derived.
type StructuralWeights struct {
	Histogram float64
	Depth     float64
	Size      float64
}

// DefaultStructuralWeights returns the stock signal blend.
func DefaultStructuralWeights() StructuralWeights {
	return StructuralWeights{Histogram: 0.5, Depth: 0.25, Size: 0.25}
}

// compareStructural runs the parse tree layer over one submission pair.
// Equal structural hashes short circuit to a perfect score; otherwise the
// score blends node histogram cosine, depth closeness and size ratio.
func compareStructural(an sourceAnalyzer, code1, code2 string, w StructuralWeights) models.LayerResult {
	res := models.LayerResult{Layer: models.LayerStructural, Confidence: confidenceStructural}

	f1, err1 := an.ParseFeatures(code1)
	f2, err2 := an.ParseFeatures(code2)
	if err1 != nil || err2 != nil {
		err := err1
		if err == nil {
			err = err2
		}
		res.Confidence = 0
		res.Error = fmt.Sprintf("structural analysis failed: %v", err)
		return res
	}

	if f1.StructuralHash == f2.StructuralHash {
		res.Score = 1.0
	} else {
		res.Score = w.Histogram*cosineSimilarity(f1.NodeTypes, f2.NodeTypes) +
			w.Depth*closeness(f1.MaxDepth, f2.MaxDepth) +
			w.Size*sizeRatio(f1.NodeCount, f2.NodeCount)
	}

	res.Details = map[string]any{
		"tree1_depth":      f1.MaxDepth,
		"tree2_depth":      f2.MaxDepth,
		"node_count_diff":  abs(f1.NodeCount - f2.NodeCount),
		"function_count1":  f1.FunctionCount,
		"function_count2":  f2.FunctionCount,
		"structural_hash1": f1.StructuralHash,
		"structural_hash2": f2.StructuralHash,
		"common_patterns":  commonPatterns(f1, f2),
	}
	return res
}

func commonPatterns(f1, f2 *models.StructuralFeatures) []string {
	patterns := []string{}
	if f1.ControlPattern != "" && f1.ControlPattern == f2.ControlPattern {
		patterns = append(patterns, "identical control structure sequence")
	}
	if f1.LoopCount > 0 && f1.LoopCount == f2.LoopCount {
		patterns = append(patterns, "same loop count")
	}
	if sharedCallCount(f1.FunctionCalls, f2.FunctionCalls) > 3 {
		patterns = append(patterns, "more than three shared function calls")
	}
	return patterns
}

func sharedCallCount(calls1, calls2 []string) int {
	set1 := toSet(calls1)
	set2 := toSet(calls2)
	n := 0
	for c := range set1 {
		if _, ok := set2[c]; ok {
			n++
		}
	}
	return n
}

// cosineSimilarity compares two node type histograms. Two empty histograms
// are identical by convention; a zero magnitude shares nothing.
func cosineSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	var dot, normA, normB float64
	for k, av := range a {
		if bv, ok := b[k]; ok {
			dot += float64(av) * float64(bv)
		}
		normA += float64(av) * float64(av)
	}
	for _, bv := range b {
		normB += float64(bv) * float64(bv)
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sizeRatio(a, b int) float64 {
	if a == 0 && b == 0 {
		return 1.0
	}
	return float64(min(a, b)) / float64(max(a, b))
}

// goFeatures parses Go source and walks the tree once, collecting counts,
// the control structure sequence and a structure only hash.
func goFeatures(src string) (*models.StructuralFeatures, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	f := &models.StructuralFeatures{NodeTypes: make(map[string]int)}
	var pattern []byte
	depth := 0
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			depth--
			return true
		}
		depth++
		if depth > f.MaxDepth {
			f.MaxDepth = depth
		}
		f.NodeCount++
		f.NodeTypes[nodeTypeName(n)]++

		switch node := n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			f.FunctionCount++
			pattern = append(pattern, 'F')
		case *ast.ForStmt, *ast.RangeStmt:
			f.LoopCount++
			pattern = append(pattern, 'L')
		case *ast.IfStmt:
			f.ConditionCount++
			pattern = append(pattern, 'I')
		case *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
			f.ConditionCount++
			pattern = append(pattern, 'S')
		case *ast.CallExpr:
			switch fun := node.Fun.(type) {
			case *ast.Ident:
				f.FunctionCalls = append(f.FunctionCalls, fun.Name)
			case *ast.SelectorExpr:
				f.FunctionCalls = append(f.FunctionCalls, fun.Sel.Name)
			}
		}
		return true
	})

	f.ControlPattern = string(pattern)
	f.StructuralHash = computeHash(serializeGoTree(file))
	return f, nil
}

// serializeGoTree renders the tree as nested node type names, excluding
// identifier names and literal values so renamings hash identically.
func serializeGoTree(root ast.Node) string {
	var sb strings.Builder
	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			sb.WriteByte(')')
			return true
		}
		sb.WriteByte('(')
		sb.WriteString(nodeTypeName(n))
		return true
	})
	return sb.String()
}

func nodeTypeName(n ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

var (
	cFuncDef      = regexp.MustCompile(`\b\w+\s+\w+\s*\([^)]*\)\s*\{`)
	pyFuncDef     = regexp.MustCompile(`(?m)^\s*def\s+\w+\s*\(`)
	cControlScan  = regexp.MustCompile(`\b(for|while|if|switch)\s*\(`)
	pyControlScan = regexp.MustCompile(`\b(for|while|if|elif)\b`)
	callSite      = regexp.MustCompile(`\b([A-Za-z_]\w*)\s*\(`)

	dquoted   = regexp.MustCompile(`"[^"]*"`)
	squoted   = regexp.MustCompile(`'[^']*'`)
	wordRun   = regexp.MustCompile(`\b[a-zA-Z_]\w*\b`)
	numberRun = regexp.MustCompile(`\b\d+\b`)
	spaceRun  = regexp.MustCompile(`\s+`)
)

// textFeatures approximates structural features for languages without a
// native parser here. Counting is lexical, the hash is a normalised code
// skeleton, so renamed copies still collide.
func textFeatures(src, language string) (*models.StructuralFeatures, error) {
	stripped := stripComments(src, language)

	f := &models.StructuralFeatures{NodeTypes: make(map[string]int)}
	f.NodeCount = len(strings.Fields(stripped))

	var funcDef, controlScan *regexp.Regexp
	if language == LangPython {
		funcDef = pyFuncDef
		controlScan = pyControlScan
		f.MaxDepth = indentDepth(stripped)
	} else {
		funcDef = cFuncDef
		controlScan = cControlScan
		f.MaxDepth = braceDepth(stripped)
	}
	f.FunctionCount = len(funcDef.FindAllString(stripped, -1))

	var pattern []byte
	for _, m := range controlScan.FindAllStringSubmatch(stripped, -1) {
		switch m[1] {
		case "for", "while":
			f.LoopCount++
			pattern = append(pattern, 'L')
		case "if", "elif":
			f.ConditionCount++
			pattern = append(pattern, 'I')
		case "switch":
			f.ConditionCount++
			pattern = append(pattern, 'S')
		}
	}
	f.ControlPattern = string(pattern)

	kw := keywordSet(language)
	for _, w := range wordRun.FindAllString(stripped, -1) {
		if _, ok := kw[w]; ok {
			f.NodeTypes[w]++
		}
	}
	for _, m := range callSite.FindAllStringSubmatch(stripped, -1) {
		if _, ok := kw[m[1]]; ok {
			continue
		}
		f.FunctionCalls = append(f.FunctionCalls, m[1])
	}

	f.StructuralHash = computeHash(normalizeSkeleton(stripped))
	return f, nil
}

func stripComments(src, language string) string {
	if language == LangPython {
		return hashComment.ReplaceAllString(src, "")
	}
	src = blockComment.ReplaceAllString(src, "")
	return lineComment.ReplaceAllString(src, "")
}

// normalizeSkeleton reduces source to its shape: strings to S, every word
// to X, numbers to N, whitespace removed.
func normalizeSkeleton(src string) string {
	src = dquoted.ReplaceAllString(src, "S")
	src = squoted.ReplaceAllString(src, "S")
	src = wordRun.ReplaceAllString(src, "X")
	src = numberRun.ReplaceAllString(src, "N")
	return spaceRun.ReplaceAllString(src, "")
}

func braceDepth(src string) int {
	depth, maxDepth := 0, 0
	for _, r := range src {
		switch r {
		case '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}

// indentDepth treats four spaces or one tab as one nesting level.
func indentDepth(src string) int {
	maxDepth := 0
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := 0
		for _, r := range line[:len(line)-len(trimmed)] {
			if r == '\t' {
				indent += 4
			} else {
				indent++
			}
		}
		if level := indent/4 + 1; level > maxDepth {
			maxDepth = level
		}
	}
	return maxDepth
}

// computeHash computes SHA256 hash of a string
func computeHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
