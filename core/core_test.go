package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found config", NewNotFoundError("agent", "a1", "missing"), CodeConfiguration},
		{"bare not found", fmt.Errorf("lookup: %w", ErrNotFound), CodeNotFound},
		{"credential", &CredentialError{TenantID: "t", Err: errors.New("bad token")}, CodeCredential},
		{"unsupported", fmt.Errorf("wrap: %w", &UnsupportedHandlerError{Kind: "provider", Handler: "x"}), CodeUnsupportedHandler},
		{"timeout", fmt.Errorf("model: %w", context.DeadlineExceeded), CodeTimeout},
		{"other", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestConfigurationError_WrapsNotFound(t *testing.T) {
	err := fmt.Errorf("get client: %w", NewNotFoundError("model", "m1", "inactive"))

	assert.True(t, errors.Is(err, ErrNotFound))

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "m1", cfgErr.ID)
	assert.Equal(t, `configuration error: model "m1": inactive`, cfgErr.Error())
}

func TestConfigurationError_WrappedCause(t *testing.T) {
	cause := errors.New("schema invalid")
	err := &ConfigurationError{Resource: "capability", ID: "c1", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "schema invalid")
}

func TestEnvelopes(t *testing.T) {
	t.Run("success defaults", func(t *testing.T) {
		env := NewSuccessEnvelope("debt", "query", "", nil, nil)
		assert.Equal(t, StatusSuccess, env.Status)
		assert.Equal(t, FormatStructuredJSON, env.Format)
		assert.Equal(t, map[string]any{"type": "json"}, env.RendererHint)
		assert.NotNil(t, env.Data)
		assert.NotNil(t, env.Metadata)
	})

	t.Run("success custom format", func(t *testing.T) {
		env := NewSuccessEnvelope("debt", "query", "markdown", map[string]any{"response": "x"}, nil)
		assert.Equal(t, map[string]any{"type": "markdown"}, env.RendererHint)
	})

	t.Run("error", func(t *testing.T) {
		env := NewErrorEnvelope(SupervisorAgent, IntentRoutingError, &UnsupportedHandlerError{Kind: "agent", Handler: "x"})
		assert.Equal(t, StatusError, env.Status)
		assert.Equal(t, FormatText, env.Format)
		assert.Equal(t, CodeUnsupportedHandler, env.Data["code"])
		assert.Equal(t, map[string]any{"type": "error"}, env.RendererHint)
	})

	t.Run("clarification", func(t *testing.T) {
		env := NewClarificationEnvelope(IntentMultiIntent, "one at a time", []string{"debt", "other"})
		assert.Equal(t, StatusClarification, env.Status)
		assert.Equal(t, SupervisorAgent, env.Agent)
		assert.Equal(t, []string{"debt", "other"}, env.Data["detected_intents"])

		unclear := NewClarificationEnvelope(IntentUnclear, "rephrase", nil)
		assert.NotContains(t, unclear.Data, "detected_intents")
	})
}
