package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("VERITAS_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("VERITAS_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("VERITAS_TEST_MISSING", "fallback"))

	t.Setenv("VERITAS_TEST_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("VERITAS_TEST_EMPTY", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("VERITAS_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("VERITAS_TEST_INT", 7))

	t.Setenv("VERITAS_TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("VERITAS_TEST_INT", 7))

	assert.Equal(t, 7, GetEnvInt("VERITAS_TEST_INT_MISSING", 7))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("VERITAS_TEST_FLOAT", "0.35")
	assert.Equal(t, 0.35, GetEnvFloat("VERITAS_TEST_FLOAT", 1.0))

	t.Setenv("VERITAS_TEST_FLOAT", "nope")
	assert.Equal(t, 1.0, GetEnvFloat("VERITAS_TEST_FLOAT", 1.0))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("VERITAS_TEST_BOOL", "true")
	assert.True(t, GetEnvBool("VERITAS_TEST_BOOL", false))

	t.Setenv("VERITAS_TEST_BOOL", "0")
	assert.False(t, GetEnvBool("VERITAS_TEST_BOOL", true))

	t.Setenv("VERITAS_TEST_BOOL", "maybe")
	assert.True(t, GetEnvBool("VERITAS_TEST_BOOL", true))
}
