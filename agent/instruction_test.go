package agent

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/tool"
)

func TestComposeInstruction(t *testing.T) {
	debt := tool.NewFunctionTool("get_debt", "Look up the outstanding debt", map[string]any{
		"properties": map[string]any{"tax_code": map[string]any{"type": "string"}},
		"required":   []any{"tax_code"},
	}, func(*core.ToolContext, map[string]any) (any, error) { return nil, nil })

	instr, err := ComposeInstruction(
		"You are the debt assistant. Customer: {{.tax_code}}",
		Variant{Name: VariantDebt},
		[]tool.Tool{debt},
		map[string]any{"tax_code": "0123456789012"},
		nil,
	)
	require.NoError(t, err)

	assert.Contains(t, instr, "You are the debt assistant. Customer: 0123456789012")
	assert.Contains(t, instr, "- get_debt: Look up the outstanding debt (required: tax_code)")
	assert.Contains(t, instr, `Known entities: {"tax_code":"0123456789012"}`)
	assert.Contains(t, instr, immediateCallRule)
}

func TestComposeInstruction_VariantSuffixAndMissingKeys(t *testing.T) {
	instr, err := ComposeInstruction("Answer about {{.topic}}.", DefaultVariants()[VariantAnalysis], nil, map[string]any{}, nil)
	require.NoError(t, err)

	assert.Contains(t, instr, "Answer about .")
	assert.Contains(t, instr, "Format citations as: [Source: <metadata_info>]")
	assert.NotContains(t, instr, "Available capabilities")
	assert.Contains(t, instr, "Known entities: {}")
}

func TestComposeInstruction_UnparsablePromptUsedVerbatim(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"placeholder without dot", "Ask the user for {{tax_code}} if it is missing."},
		{"unterminated action", "Customer {{.broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelWarn, Format: "json", Output: &buf})

			instr, err := ComposeInstruction(tt.prompt, Variant{}, nil, map[string]any{"tax_code": "0101"}, logger)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(instr, tt.prompt))
			assert.Contains(t, instr, `Known entities: {"tax_code":"0101"}`)
			assert.Contains(t, buf.String(), "agent.prompt.render_failed")
		})
	}
}

func TestDefaultVariants(t *testing.T) {
	v := DefaultVariants()
	assert.Equal(t, VariantDebt, v["AgentDebt"].Name)
	assert.Equal(t, VariantAnalysis, v["AgentAnalysis"].Name)
	assert.Equal(t, true, v[VariantAnalysis].Metadata["supports_citations"])
	assert.Equal(t, VariantDefault, v[""].Name)
	_, ok := v["AgentShipping"]
	assert.False(t, ok)
}
