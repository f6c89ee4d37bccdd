package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoTokensMasking(t *testing.T) {
	t.Run("masks identifiers numbers and strings", func(t *testing.T) {
		tokens := goTokens("x := 42\n")
		assert.Equal(t, []string{"VAR", ":=", "NUM", ";"}, tokens)

		tokens = goTokens(`s := "hello"` + "\n")
		assert.Equal(t, []string{"VAR", ":=", "STR", ";"}, tokens)
	})

	t.Run("drops comments", func(t *testing.T) {
		withComment := goTokens("x := 1 // tally\n")
		without := goTokens("x := 1\n")
		assert.Equal(t, without, withComment)

		blockTokens := goTokens("/* header */\nx := 1\n")
		assert.Equal(t, without, blockTokens)
	})

	t.Run("renamed programs produce identical streams", func(t *testing.T) {
		src1 := `package main

func add(a, b int) int {
	return a + b
}
`
		src2 := `package main

func sum(left, right int) int {
	return left + right
}
`
		assert.Equal(t, goTokens(src1), goTokens(src2))
	})

	t.Run("keywords and operators survive", func(t *testing.T) {
		tokens := goTokens("for i := 0; i < 10; i++ {\n}\n")
		assert.Contains(t, tokens, "for")
		assert.Contains(t, tokens, "<")
		assert.Contains(t, tokens, "++")
		assert.NotContains(t, tokens, "i")
		assert.NotContains(t, tokens, "10")
	})
}

func TestTextTokensPython(t *testing.T) {
	t.Run("keywords kept identifiers masked", func(t *testing.T) {
		tokens := textTokens("def add(a, b):\n    # sum\n    return a + b\n", LangPython)
		assert.Equal(t, []string{"def", "VAR", "(", "VAR", ",", "VAR", ")", ":", "return", "VAR", "+", "VAR"}, tokens)
	})

	t.Run("literals masked", func(t *testing.T) {
		tokens := textTokens(`x = "hi" + 42`, LangPython)
		assert.Equal(t, []string{"VAR", "=", "STR", "+", "NUM"}, tokens)
	})

	t.Run("triple quoted strings are one token", func(t *testing.T) {
		tokens := textTokens("s = '''module\ndoc'''", LangPython)
		assert.Equal(t, []string{"VAR", "=", "STR"}, tokens)
	})

	t.Run("renamed programs produce identical streams", func(t *testing.T) {
		src1 := "def area(w, h):\n    return w * h\n"
		src2 := "def size(a, b):\n    return a * b\n"
		assert.Equal(t, textTokens(src1, LangPython), textTokens(src2, LangPython))
	})
}

func TestTextTokensC(t *testing.T) {
	t.Run("strips both comment forms", func(t *testing.T) {
		tokens := textTokens("int x = 1; /* block */ // line\n", LangC)
		assert.Equal(t, []string{"int", "VAR", "=", "NUM", ";"}, tokens)
	})

	t.Run("keyword tables differ per language", func(t *testing.T) {
		cTokens := textTokens("class Foo;", LangC)
		cppTokens := textTokens("class Foo;", LangCPP)
		assert.Equal(t, []string{"VAR", "VAR", ";"}, cTokens)
		assert.Equal(t, []string{"class", "VAR", ";"}, cppTokens)
	})
}
