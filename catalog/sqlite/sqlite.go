// Package sqlite implements catalog.Store on a SQLite database using the
// pure-Go modernc.org/sqlite driver. The table layout mirrors the catalog
// administered by the hub's configuration service.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/core"
)

// Store implements catalog.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ catalog.Store = (*Store)(nil)

// Open opens (or creates) a SQLite database at dbPath and runs the schema
// migration.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS llm_models (
			id                    TEXT PRIMARY KEY,
			provider              TEXT NOT NULL,
			model_name            TEXT NOT NULL,
			context_window        INTEGER NOT NULL DEFAULT 0,
			cost_per_input_token  TEXT NOT NULL DEFAULT '0',
			cost_per_output_token TEXT NOT NULL DEFAULT '0',
			capabilities          TEXT NOT NULL DEFAULT '[]',
			is_active             INTEGER NOT NULL DEFAULT 1
		);
		CREATE TABLE IF NOT EXISTS tenant_llm_configs (
			tenant_id         TEXT PRIMARY KEY,
			llm_model_id      TEXT NOT NULL,
			encrypted_api_key TEXT NOT NULL,
			rate_limit_rpm    INTEGER NOT NULL DEFAULT 60,
			rate_limit_tpm    INTEGER NOT NULL DEFAULT 10000
		);
		CREATE TABLE IF NOT EXISTS base_tools (
			id                    TEXT PRIMARY KEY,
			type                  TEXT NOT NULL,
			handler_class         TEXT NOT NULL,
			default_config_schema TEXT NOT NULL DEFAULT '{}'
		);
		CREATE TABLE IF NOT EXISTS tool_configs (
			id           TEXT PRIMARY KEY,
			base_tool_id TEXT NOT NULL,
			name         TEXT NOT NULL UNIQUE,
			description  TEXT NOT NULL DEFAULT '',
			config       TEXT NOT NULL DEFAULT '{}',
			input_schema TEXT NOT NULL DEFAULT '{}',
			is_active    INTEGER NOT NULL DEFAULT 1
		);
		CREATE TABLE IF NOT EXISTS agent_configs (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL UNIQUE,
			description     TEXT NOT NULL DEFAULT '',
			prompt_template TEXT NOT NULL DEFAULT '',
			llm_model_id    TEXT,
			handler_class   TEXT NOT NULL DEFAULT 'default',
			output_format   TEXT NOT NULL DEFAULT '',
			is_active       INTEGER NOT NULL DEFAULT 1
		);
		CREATE TABLE IF NOT EXISTS agent_tools (
			agent_id TEXT NOT NULL,
			tool_id  TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (agent_id, tool_id)
		);
		CREATE TABLE IF NOT EXISTS tenant_agent_permissions (
			tenant_id TEXT NOT NULL,
			agent_id  TEXT NOT NULL,
			enabled   INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (tenant_id, agent_id)
		);
		CREATE TABLE IF NOT EXISTS tenant_tool_permissions (
			tenant_id TEXT NOT NULL,
			tool_id   TEXT NOT NULL,
			enabled   INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (tenant_id, tool_id)
		)
	`)
	return err
}

// DB exposes the underlying handle for the administrative boundary and tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// TenantBinding implements catalog.Store.
func (s *Store) TenantBinding(ctx context.Context, tenantID string) (*catalog.TenantModelBinding, error) {
	var b catalog.TenantModelBinding
	err := s.db.QueryRowContext(ctx,
		"SELECT tenant_id, llm_model_id, encrypted_api_key, rate_limit_rpm, rate_limit_tpm FROM tenant_llm_configs WHERE tenant_id = ?",
		tenantID,
	).Scan(&b.TenantID, &b.ModelID, &b.EncryptedCredential, &b.RateLimitRPM, &b.RateLimitTPM)
	if err != nil {
		return nil, lookupErr(err, "tenant binding", tenantID)
	}
	return &b, nil
}

// Model implements catalog.Store.
func (s *Store) Model(ctx context.Context, modelID string) (*catalog.ModelDescriptor, error) {
	var (
		m    catalog.ModelDescriptor
		caps string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, provider, model_name, context_window, cost_per_input_token, cost_per_output_token, capabilities, is_active FROM llm_models WHERE id = ?",
		modelID,
	).Scan(&m.ID, &m.Provider, &m.Name, &m.ContextWindow, &m.CostPerInputToken, &m.CostPerOutputToken, &caps, &m.Active)
	if err != nil {
		return nil, lookupErr(err, "model", modelID)
	}
	if err := unmarshalColumn(caps, &m.Capabilities); err != nil {
		return nil, fmt.Errorf("decode model capabilities: %w", err)
	}
	return &m, nil
}

// CapabilityTemplate implements catalog.Store.
func (s *Store) CapabilityTemplate(ctx context.Context, templateID string) (*catalog.CapabilityTemplate, error) {
	var (
		t      catalog.CapabilityTemplate
		schema string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, type, handler_class, default_config_schema FROM base_tools WHERE id = ?",
		templateID,
	).Scan(&t.ID, &t.Type, &t.HandlerID, &schema)
	if err != nil {
		return nil, lookupErr(err, "capability template", templateID)
	}
	if err := unmarshalColumn(schema, &t.DefaultConfigSchema); err != nil {
		return nil, fmt.Errorf("decode template schema: %w", err)
	}
	return &t, nil
}

// CapabilityInstance implements catalog.Store.
func (s *Store) CapabilityInstance(ctx context.Context, capabilityID string) (*catalog.CapabilityInstance, error) {
	var (
		c              catalog.CapabilityInstance
		config, schema string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, base_tool_id, name, description, config, input_schema, is_active FROM tool_configs WHERE id = ?",
		capabilityID,
	).Scan(&c.ID, &c.TemplateID, &c.Name, &c.Description, &config, &schema, &c.Active)
	if err != nil {
		return nil, lookupErr(err, "capability", capabilityID)
	}
	if err := unmarshalColumn(config, &c.Config); err != nil {
		return nil, fmt.Errorf("decode capability config: %w", err)
	}
	if err := unmarshalColumn(schema, &c.InputSchema); err != nil {
		return nil, fmt.Errorf("decode capability schema: %w", err)
	}
	return &c, nil
}

const agentColumns = "id, name, description, prompt_template, llm_model_id, handler_class, output_format, is_active"

// Agent implements catalog.Store.
func (s *Store) Agent(ctx context.Context, agentID string) (*catalog.AgentDescriptor, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+agentColumns+" FROM agent_configs WHERE id = ?", agentID)
	a, err := scanAgent(row)
	if err != nil {
		return nil, lookupErr(err, "agent", agentID)
	}
	return a, nil
}

// AgentByName implements catalog.Store.
func (s *Store) AgentByName(ctx context.Context, name string) (*catalog.AgentDescriptor, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+agentColumns+" FROM agent_configs WHERE name = ?", name)
	a, err := scanAgent(row)
	if err != nil {
		return nil, lookupErr(err, "agent", name)
	}
	return a, nil
}

// AgentCapabilities implements catalog.Store.
func (s *Store) AgentCapabilities(ctx context.Context, agentID string) ([]catalog.AgentCapabilityLink, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT agent_id, tool_id, priority FROM agent_tools WHERE agent_id = ? ORDER BY priority ASC, tool_id ASC",
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []catalog.AgentCapabilityLink
	for rows.Next() {
		var l catalog.AgentCapabilityLink
		if err := rows.Scan(&l.AgentID, &l.CapabilityID, &l.Priority); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// EnabledAgents implements catalog.Store.
func (s *Store) EnabledAgents(ctx context.Context, tenantID string) ([]catalog.AgentDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.description, a.prompt_template, a.llm_model_id, a.handler_class, a.output_format, a.is_active
		FROM agent_configs a
		JOIN tenant_agent_permissions p ON p.agent_id = a.id
		WHERE p.tenant_id = ? AND p.enabled = 1 AND a.is_active = 1
		ORDER BY a.name`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []catalog.AgentDescriptor
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// CapabilityEnabled implements catalog.Store.
func (s *Store) CapabilityEnabled(ctx context.Context, tenantID, capabilityID string) (bool, error) {
	var enabled bool
	err := s.db.QueryRowContext(ctx,
		"SELECT enabled FROM tenant_tool_permissions WHERE tenant_id = ? AND tool_id = ?",
		tenantID, capabilityID,
	).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return enabled, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAgent(row scanner) (*catalog.AgentDescriptor, error) {
	var (
		a       catalog.AgentDescriptor
		modelID sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.PromptTemplate, &modelID, &a.HandlerID, &a.OutputFormat, &a.Active); err != nil {
		return nil, err
	}
	a.ModelID = modelID.String
	return &a, nil
}

func lookupErr(err error, resource, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewNotFoundError(resource, id, "not found")
	}
	return fmt.Errorf("query %s %q: %w", resource, id, err)
}

func unmarshalColumn(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
