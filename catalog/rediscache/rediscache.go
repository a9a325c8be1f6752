// Package rediscache decorates a catalog.Store with a Redis read-through
// cache for single-entity lookups. Keys follow agenthub:{scope}:cache:{key}
// where scope is a tenant id or "global". Enablement and link lists always
// read through so toggles take effect immediately.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/logging"
)

// GlobalScope holds entries shared by every tenant.
const GlobalScope = "global"

// Options configures the cache decorator.
type Options struct {
	TTL    time.Duration
	Logger logging.Logger
}

// Store is a caching catalog.Store.
type Store struct {
	next   catalog.Store
	client redis.UniversalClient
	opts   Options
}

var _ catalog.Store = (*Store)(nil)

// New wraps next with a Redis read-through cache.
func New(next catalog.Store, client redis.UniversalClient, optFns ...func(o *Options)) *Store {
	opts := Options{
		TTL:    time.Hour,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{next: next, client: client, opts: opts}
}

// NewClient connects to the Redis server at url and verifies it with PING.
func NewClient(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, errors.New("redis url must be provided")
	}
	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(parsed)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Key builds the cache key for an entry.
func Key(scope, key string) string {
	return fmt.Sprintf("agenthub:%s:cache:%s", scope, key)
}

// TenantBinding implements catalog.Store.
func (s *Store) TenantBinding(ctx context.Context, tenantID string) (*catalog.TenantModelBinding, error) {
	return readThrough(ctx, s, Key(tenantID, "binding"), func() (*catalog.TenantModelBinding, error) {
		return s.next.TenantBinding(ctx, tenantID)
	})
}

// Model implements catalog.Store.
func (s *Store) Model(ctx context.Context, modelID string) (*catalog.ModelDescriptor, error) {
	return readThrough(ctx, s, Key(GlobalScope, "model:"+modelID), func() (*catalog.ModelDescriptor, error) {
		return s.next.Model(ctx, modelID)
	})
}

// CapabilityTemplate implements catalog.Store.
func (s *Store) CapabilityTemplate(ctx context.Context, templateID string) (*catalog.CapabilityTemplate, error) {
	return readThrough(ctx, s, Key(GlobalScope, "template:"+templateID), func() (*catalog.CapabilityTemplate, error) {
		return s.next.CapabilityTemplate(ctx, templateID)
	})
}

// CapabilityInstance implements catalog.Store.
func (s *Store) CapabilityInstance(ctx context.Context, capabilityID string) (*catalog.CapabilityInstance, error) {
	return readThrough(ctx, s, Key(GlobalScope, "capability:"+capabilityID), func() (*catalog.CapabilityInstance, error) {
		return s.next.CapabilityInstance(ctx, capabilityID)
	})
}

// Agent implements catalog.Store.
func (s *Store) Agent(ctx context.Context, agentID string) (*catalog.AgentDescriptor, error) {
	return readThrough(ctx, s, Key(GlobalScope, "agent:"+agentID), func() (*catalog.AgentDescriptor, error) {
		return s.next.Agent(ctx, agentID)
	})
}

// AgentByName implements catalog.Store.
func (s *Store) AgentByName(ctx context.Context, name string) (*catalog.AgentDescriptor, error) {
	return s.next.AgentByName(ctx, name)
}

// AgentCapabilities implements catalog.Store.
func (s *Store) AgentCapabilities(ctx context.Context, agentID string) ([]catalog.AgentCapabilityLink, error) {
	return s.next.AgentCapabilities(ctx, agentID)
}

// EnabledAgents implements catalog.Store.
func (s *Store) EnabledAgents(ctx context.Context, tenantID string) ([]catalog.AgentDescriptor, error) {
	return s.next.EnabledAgents(ctx, tenantID)
}

// CapabilityEnabled implements catalog.Store.
func (s *Store) CapabilityEnabled(ctx context.Context, tenantID, capabilityID string) (bool, error) {
	return s.next.CapabilityEnabled(ctx, tenantID, capabilityID)
}

// Invalidate deletes every cached entry of scope. An empty scope clears all
// scopes.
func (s *Store) Invalidate(ctx context.Context, scope string) error {
	if scope == "" {
		scope = "*"
	}
	pattern := Key(scope, "*")

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return fmt.Errorf("scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// readThrough serves key from Redis, falling back to load on a miss. Redis
// failures degrade to uncached reads; load failures are never cached.
func readThrough[T any](ctx context.Context, s *Store, key string, load func() (*T, error)) (*T, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		s.opts.Logger.Warn("catalog.cache.decode_failed", "key", key)
	case !errors.Is(err, redis.Nil):
		s.opts.Logger.Warn("catalog.cache.get_failed", "key", key, "error", err.Error())
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := s.client.Set(ctx, key, data, s.opts.TTL).Err(); err != nil {
		s.opts.Logger.Warn("catalog.cache.set_failed", "key", key, "error", err.Error())
	}
	return v, nil
}
