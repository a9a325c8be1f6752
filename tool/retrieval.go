package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agenthub/logging"
)

// Retrieval limits for the number of returned documents.
const (
	DefaultTopK = 5
	MinTopK     = 1
	MaxTopK     = 20
)

// Document is one passage returned by a knowledge retrieval service.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Distance *float64       `json:"distance"`
	Rank     int            `json:"rank"`
}

// Retriever queries a tenant knowledge collection.
type Retriever interface {
	Query(ctx context.Context, collection, query string, topK int) ([]Document, error)
}

// RetrievalConfig is the decoded configuration of a retrieval capability.
type RetrievalConfig struct {
	Collection string
	TopK       int
}

// ParseRetrievalConfig reads collection_name and top_k from a capability
// configuration map. Missing collections fall back to the tenant default;
// top_k is clamped to 1..20.
func ParseRetrievalConfig(tenantID string, cfg map[string]any) RetrievalConfig {
	out := RetrievalConfig{TopK: DefaultTopK}

	out.Collection, _ = cfg["collection_name"].(string)
	if out.Collection == "" {
		out.Collection = DefaultCollection(tenantID)
	}

	switch v := cfg["top_k"].(type) {
	case float64:
		out.TopK = int(v)
	case int:
		out.TopK = v
	}
	out.TopK = min(max(out.TopK, MinTopK), MaxTopK)

	return out
}

// DefaultCollection returns the knowledge collection of a tenant.
func DefaultCollection(tenantID string) string {
	return fmt.Sprintf("tenant_%s_knowledge", strings.ReplaceAll(tenantID, "-", ""))
}

// RetrievalHandler answers the "query" argument with ranked passages. It
// never fails: retrieval problems are reported as a structured result with
// success=false.
type RetrievalHandler struct {
	retriever Retriever
	config    RetrievalConfig
	logger    logging.Logger
}

// NewRetrievalHandler creates a retrieval handler.
func NewRetrievalHandler(retriever Retriever, cfg RetrievalConfig, logger logging.Logger) *RetrievalHandler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RetrievalHandler{retriever: retriever, config: cfg, logger: logger}
}

// Config returns the resolved retrieval configuration.
func (h *RetrievalHandler) Config() RetrievalConfig { return h.config }

// Execute implements Handler.
func (h *RetrievalHandler) Execute(ctx context.Context, inv Invocation) (any, error) {
	query, _ := inv.Args["query"].(string)
	if strings.TrimSpace(query) == "" {
		h.logger.Warn("capability.retrieval.empty_query", "tenant_id", inv.TenantID)
		return failure("Query parameter is required"), nil
	}

	if h.retriever == nil {
		return failure("Knowledge retrieval failed: no retriever configured"), nil
	}

	docs, err := h.retriever.Query(ctx, h.config.Collection, query, h.config.TopK)
	if err != nil {
		h.logger.Error("capability.retrieval.failed",
			"tenant_id", inv.TenantID,
			"collection", h.config.Collection,
			"error", err.Error(),
		)
		return failure(fmt.Sprintf("Knowledge retrieval failed: %v", err)), nil
	}

	documents := make([]map[string]any, 0, len(docs))
	for i, d := range docs {
		metadata := d.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		entry := map[string]any{
			"content":  d.Content,
			"metadata": metadata,
			"distance": nil,
			"rank":     i + 1,
		}
		if d.Distance != nil {
			entry["distance"] = *d.Distance
		}
		documents = append(documents, entry)
	}

	h.logger.Info("capability.retrieval.executed",
		"tenant_id", inv.TenantID,
		"collection", h.config.Collection,
		"query_length", len(query),
		"results_count", len(documents),
	)

	return map[string]any{
		"success":       true,
		"query":         query,
		"documents":     documents,
		"total_results": len(documents),
	}, nil
}

func failure(msg string) map[string]any {
	return map[string]any{
		"success":   false,
		"error":     msg,
		"documents": []map[string]any{},
	}
}
