package llmparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Intent string `json:"intent"`
	}

	require.NoError(t, DecodeJSON("```json\n{\"intent\":\"lookup\"}\n```", &out))
	assert.Equal(t, "lookup", out.Intent)

	require.NoError(t, DecodeJSON("Sure! Here it is: {\"intent\":\"pay\"} hope that helps", &out))
	assert.Equal(t, "pay", out.Intent)

	assert.ErrorIs(t, DecodeJSON("   ", &out), ErrEmpty)
	assert.Error(t, DecodeJSON("not json at all", &out))
}

func TestLabel(t *testing.T) {
	valid := []string{"DebtAgent", "MULTI_INTENT", "UNCLEAR"}

	tests := []struct {
		in    string
		want  string
		match bool
	}{
		{"DebtAgent", "DebtAgent", true},
		{"  debtagent.\n", "DebtAgent", true},
		{"\"MULTI_INTENT\"", "MULTI_INTENT", true},
		{"**UNCLEAR**", "UNCLEAR", true},
		{"DebtAgent\nbecause the user asks about debt", "DebtAgent", true},
		{"WeatherAgent", "WeatherAgent", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Label(tt.in, valid)
		assert.Equal(t, tt.match, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
