package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, Component: "supervisor"})

	l.Debug("hidden")
	l.Info("supervisor.route.classified", "tenant_id", "t1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "supervisor.route.classified", entry["msg"])
	assert.Equal(t, "supervisor", entry["component"])
	assert.Equal(t, "t1", entry["tenant_id"])
}

func TestNewLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.Warn("capability.credential.test_override", "tenant_id", "t1", "credential", "dev-token", "Authorization", "Bearer x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, Redacted, entry["credential"])
	assert.Equal(t, Redacted, entry["Authorization"])
	assert.Equal(t, "t1", entry["tenant_id"])
	assert.NotContains(t, buf.String(), "dev-token")
}

func TestWith_Slog(t *testing.T) {
	var buf bytes.Buffer
	l := With(NewLogger(&LoggerConfig{Format: "text", Output: &buf}), "tenant_id", "t9")
	l.Warn("capability.build.failed")

	assert.Contains(t, buf.String(), "tenant_id=t9")
	assert.Contains(t, buf.String(), "capability.build.failed")
}

type recordingLogger struct {
	mu      sync.Mutex
	entries [][]any
}

func (r *recordingLogger) record(msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, append([]any{msg}, args...))
}

func (r *recordingLogger) Debug(msg string, args ...any) { r.record(msg, args) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.record(msg, args) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.record(msg, args) }
func (r *recordingLogger) Error(msg string, args ...any) { r.record(msg, args) }

func TestWith_CustomLogger(t *testing.T) {
	rec := &recordingLogger{}
	l := With(With(rec, "a", 1), "b", 2)
	l.Info("event", "c", 3)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, []any{"event", "a", 1, "b", 2, "c", 3}, rec.entries[0])

	assert.IsType(t, NoOpLogger{}, With(nil, "x", 1))
	assert.Equal(t, Logger(rec), With(rec))
}

func TestLogModelCall(t *testing.T) {
	rec := &recordingLogger{}
	LogModelCall(rec, "gpt", time.Millisecond, nil)
	LogModelCall(rec, "gpt", time.Millisecond, errors.New("boom"))

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "model.call.completed", rec.entries[0][0])
	assert.Equal(t, "model.call.failed", rec.entries[1][0])
}
