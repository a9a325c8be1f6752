package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/catalog/sqlite"
	"github.com/hupe1980/agenthub/credential"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := rootCmd.Execute()
	return out.String(), err
}

func newKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	require.NoError(t, k.Generate())
	return k.Encode()
}

func TestEncrypt(t *testing.T) {
	key := newKey(t)
	t.Setenv("FERNET_KEY", key)

	out, err := execute(t, "encrypt", "sk-secret")
	require.NoError(t, err)

	f, err := credential.NewFernet(key)
	require.NoError(t, err)
	plain, err := f.Decrypt(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", plain)
}

func TestAgents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`INSERT INTO agent_configs (id, name, description, handler_class, is_active) VALUES ('a1', 'AgentDebt', 'Debt questions', 'AgentDebt', 1)`,
		`INSERT INTO agent_configs (id, name, handler_class, is_active) VALUES ('a2', 'AgentHidden', 'default', 1)`,
		`INSERT INTO tenant_agent_permissions (tenant_id, agent_id, enabled) VALUES ('acme', 'a1', 1)`,
	} {
		_, err := db.DB().Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	t.Setenv("DATABASE_PATH", dbPath)
	t.Setenv("REDIS_URL", "")

	out, err := execute(t, "agents", "--tenant", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "AgentDebt")
	assert.Contains(t, out, "(tenant default)")
	assert.NotContains(t, out, "AgentHidden")
}

func TestRoute_RequiresMessage(t *testing.T) {
	_, err := execute(t, "route", "--tenant", "acme")
	assert.Error(t, err)
}

func TestRoute_PrintsMetrics(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	t.Setenv("DATABASE_PATH", dbPath)
	t.Setenv("REDIS_URL", "")
	t.Setenv("FERNET_KEY", newKey(t))

	out, err := execute(t, "route", "--tenant", "unbound", "--compact", "--metrics", "What do I owe?")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"error"`)
	assert.Contains(t, out, `agenthub_supervisor_routes_total{outcome="error"} 1`)
}
