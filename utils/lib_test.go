package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLower(t *testing.T) {
	assert.Equal(t, "hello", ToLower("HeLLo"))
	assert.Equal(t, "already", ToLower("already"))
	assert.Equal(t, "123 abc!", ToLower("123 ABC!"))
}

func TestToUpper(t *testing.T) {
	assert.Equal(t, "HELLO", ToUpper("HeLLo"))
}

func TestIfToLower(t *testing.T) {
	s := "lowercase"
	assert.Equal(t, s, IfToLower(s))
	assert.Equal(t, "mixed", IfToLower("MiXeD"))
}

func TestUnsafeConversions(t *testing.T) {
	b := []byte("round trip")
	assert.Equal(t, "round trip", UnsafeString(b))
	assert.Equal(t, b, UnsafeBytes("round trip"))
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 3, Abs(3))
	assert.Equal(t, 0, Abs(0))
}

func TestNewIDString(t *testing.T) {
	a := NewIDString()
	b := NewIDString()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestBoundedLevenshtein(t *testing.T) {
	cases := []struct {
		a, b      string
		threshold int
		want      int
	}{
		{"cat", "cat", 2, 0},
		{"cat", "cap", 2, 1},
		{"cat", "cart", 2, 1},
		{"kitten", "sitting", 3, 3},
		{"short", "muchlongerword", 2, 3}, // length gap exceeds threshold
		{"abc", "xyz", 1, 2},              // bail out at threshold+1
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BoundedLevenshtein(tc.a, tc.b, tc.threshold), "%q vs %q", tc.a, tc.b)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "word", ToString("word"))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "3.5", ToString(3.5))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "bytes", ToString([]byte("bytes")))
}
