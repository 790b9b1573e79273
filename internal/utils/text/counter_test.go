package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "ascii", input: "hello world", expected: 11},
		{name: "japanese", input: "こんにちは世界", expected: 7},
		{name: "mixed scripts", input: "hello世界", expected: 7},
		{name: "emoji", input: "Hello👋", expected: 6},
		{name: "flag emoji is two regional indicators", input: "🇯🇵", expected: 2},
		{name: "whitespace counts", input: " \t\n ", expected: 4},
		{name: "precomposed accent is one rune", input: "café", expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountRunes(tt.input))
		})
	}
}

func TestCountRunes_DiffersFromByteLength(t *testing.T) {
	// The property metering depends on: 1 character billed per code point,
	// not per byte.
	input := "日本語のテキスト"
	assert.Equal(t, 8, CountRunes(input))
	assert.Greater(t, len(input), CountRunes(input))
}
