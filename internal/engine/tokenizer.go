package engine

import (
	"go/scanner"
	"go/token"
	"regexp"
)

// Normalised token classes. Identifiers, numeric literals and string
// literals are masked so that renaming and constant tweaks do not change
// the token stream. Keywords and operators pass through unchanged.
const (
	maskVar = "VAR"
	maskNum = "NUM"
	maskStr = "STR"
)

// goTokens scans Go source with the standard lexer. Comments are dropped,
// automatic semicolons come through as ";" so statement boundaries survive
// masking. Lexical errors are skipped rather than aborting the stream.
func goTokens(src string) []string {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var s scanner.Scanner
	s.Init(file, []byte(src), nil, 0)

	var out []string
	for {
		_, tok, _ := s.Scan()
		if tok == token.EOF {
			break
		}
		switch {
		case tok == token.IDENT:
			out = append(out, maskVar)
		case tok == token.INT, tok == token.FLOAT, tok == token.IMAG:
			out = append(out, maskNum)
		case tok == token.STRING, tok == token.CHAR:
			out = append(out, maskStr)
		case tok == token.ILLEGAL:
			// keep scanning past bad runes
		default:
			out = append(out, tok.String())
		}
	}
	return out
}

var (
	hashComment  = regexp.MustCompile(`#[^\n]*`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// Strings first so quoted text never splits into identifier tokens,
	// then numbers, words and single punctuation characters.
	textToken = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''|"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|\d+\.?\d*|[A-Za-z_]\w*|[^\w\s]`)
)

// textTokens lexes source with a language agnostic pattern after stripping
// the language's comment forms. It is an approximation: a comment marker
// inside a string literal will truncate that line, which is acceptable
// noise for similarity scoring.
func textTokens(src, language string) []string {
	switch language {
	case LangPython:
		src = hashComment.ReplaceAllString(src, "")
	case LangC, LangCPP:
		src = blockComment.ReplaceAllString(src, "")
		src = lineComment.ReplaceAllString(src, "")
	default:
		src = blockComment.ReplaceAllString(src, "")
		src = lineComment.ReplaceAllString(src, "")
		src = hashComment.ReplaceAllString(src, "")
	}

	kw := keywordSet(language)
	raw := textToken.FindAllString(src, -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		c := t[0]
		switch {
		case c == '"' || c == '\'':
			out = append(out, maskStr)
		case c >= '0' && c <= '9':
			out = append(out, maskNum)
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			if _, ok := kw[t]; ok {
				out = append(out, t)
			} else {
				out = append(out, maskVar)
			}
		default:
			out = append(out, t)
		}
	}
	return out
}

var pythonKeywords = toSet([]string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
})

var cKeywords = toSet([]string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if",
	"inline", "int", "long", "register", "return", "short", "signed",
	"sizeof", "static", "struct", "switch", "typedef", "union", "unsigned",
	"void", "volatile", "while",
})

var cppKeywords = toSet([]string{
	"auto", "bool", "break", "case", "catch", "char", "class", "const",
	"continue", "default", "delete", "do", "double", "else", "enum",
	"explicit", "extern", "false", "float", "for", "friend", "goto", "if",
	"inline", "int", "long", "mutable", "namespace", "new", "nullptr",
	"operator", "private", "protected", "public", "register", "return",
	"short", "signed", "sizeof", "static", "struct", "switch", "template",
	"this", "throw", "true", "try", "typedef", "typename", "union",
	"unsigned", "using", "virtual", "void", "volatile", "while",
})

func keywordSet(language string) map[string]struct{} {
	switch language {
	case LangPython:
		return pythonKeywords
	case LangCPP:
		return cppKeywords
	default:
		return cKeywords
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
