package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/praxisgrid/veritas/internal/models"
)

// Canonical language identifiers, always lowercase.
const (
	LangGo     = "go"
	LangPython = "python"
	LangC      = "c"
	LangCPP    = "cpp"
)

var (
	// ErrUnsupportedLanguage is returned when no analyzer is registered for
	// the requested language.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrEmptySource is returned when a submission is empty or whitespace only.
	ErrEmptySource = errors.New("empty source code")
)

// sourceAnalyzer bundles the language specific pieces of the pipeline.
// Go submissions get a real parser; the other languages run on a lexical
// approximation good enough for similarity scoring.
type sourceAnalyzer interface {
	// Tokenize normalises source into a masked token stream.
	Tokenize(src string) []string

	// ParseFeatures extracts structural features. The error is non nil when
	// the source cannot be parsed at all.
	ParseFeatures(src string) (*models.StructuralFeatures, error)

	// BuildCFG constructs a control flow graph. Implementations fall back to
	// a keyword scan rather than failing on unparseable input.
	BuildCFG(src string) (*models.ControlFlowGraph, error)
}

// ParseLanguage canonicalises a language tag: surrounding whitespace is
// ignored and matching is case insensitive. Unknown tags return
// ErrUnsupportedLanguage.
func ParseLanguage(tag string) (string, error) {
	switch lang := strings.ToLower(strings.TrimSpace(tag)); lang {
	case LangGo, LangPython, LangC, LangCPP:
		return lang, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
	}
}

// analyzerFor maps a canonical language tag to its analyzer.
func analyzerFor(lang string) sourceAnalyzer {
	if lang == LangGo {
		return goAnalyzer{}
	}
	return textAnalyzer{language: lang}
}

// SupportedLanguages returns the language identifiers Compare accepts,
// sorted for stable output.
func SupportedLanguages() []string {
	langs := []string{LangGo, LangPython, LangC, LangCPP}
	sort.Strings(langs)
	return langs
}

// goAnalyzer runs Go submissions through the standard lexer and parser.
type goAnalyzer struct{}

func (goAnalyzer) Tokenize(src string) []string {
	return goTokens(src)
}

func (goAnalyzer) ParseFeatures(src string) (*models.StructuralFeatures, error) {
	return goFeatures(src)
}

func (goAnalyzer) BuildCFG(src string) (*models.ControlFlowGraph, error) {
	return buildGoCFG(src)
}

// textAnalyzer covers languages analysed lexically.
type textAnalyzer struct {
	language string
}

func (a textAnalyzer) Tokenize(src string) []string {
	return textTokens(src, a.language)
}

func (a textAnalyzer) ParseFeatures(src string) (*models.StructuralFeatures, error) {
	return textFeatures(src, a.language)
}

func (a textAnalyzer) BuildCFG(src string) (*models.ControlFlowGraph, error) {
	return buildTextCFG(src, a.language), nil
}
