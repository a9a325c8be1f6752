package capability

import (
	"context"
	"fmt"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/tool"
)

// Handler identifiers known to this build.
const (
	HandlerHTTPGet   = "http.get"
	HandlerHTTPPost  = "http.post"
	HandlerRetrieval = "retrieval.query"
	HandlerFunction  = "function.call"
)

// BuildContext is the input of a HandlerBuilder.
type BuildContext struct {
	TenantID  string
	Instance  catalog.CapabilityInstance
	Template  catalog.CapabilityTemplate
	Retriever tool.Retriever
	Functions map[string]tool.Tool
	Logger    logging.Logger
}

// HandlerBuilder constructs the handler behind a capability instance.
type HandlerBuilder func(b BuildContext) (tool.Handler, error)

func buildHTTPGet(b BuildContext) (tool.Handler, error) {
	return tool.NewHTTPGetHandler(b.Instance.Name, tool.ParseHTTPConfig(b.Instance.Config), func(o *tool.HTTPOptions) {
		o.Logger = b.Logger
	}), nil
}

func buildHTTPPost(b BuildContext) (tool.Handler, error) {
	return tool.NewHTTPPostHandler(b.Instance.Name, tool.ParseHTTPConfig(b.Instance.Config), func(o *tool.HTTPOptions) {
		o.Logger = b.Logger
	}), nil
}

func buildRetrieval(b BuildContext) (tool.Handler, error) {
	cfg := tool.ParseRetrievalConfig(b.TenantID, b.Instance.Config)
	return tool.NewRetrievalHandler(b.Retriever, cfg, b.Logger), nil
}

// buildFunction binds a capability to an in-process function registered
// under config["function"], or under the instance name when unset.
func buildFunction(b BuildContext) (tool.Handler, error) {
	name, _ := b.Instance.Config["function"].(string)
	if name == "" {
		name = b.Instance.Name
	}

	fn, ok := b.Functions[name]
	if !ok {
		return nil, fmt.Errorf("function %q is not registered", name)
	}

	return tool.HandlerFunc(func(ctx context.Context, inv tool.Invocation) (any, error) {
		tc := core.NewToolContext(ctx, core.TenantContext{TenantID: inv.TenantID, Credential: inv.Credential}, "", b.Logger)
		return fn.Call(tc, inv.Args)
	}), nil
}

// DefaultHandlers returns the closed handler registry including the legacy
// identifiers still present in older catalogs.
func DefaultHandlers() map[string]HandlerBuilder {
	return map[string]HandlerBuilder{
		HandlerHTTPGet:   buildHTTPGet,
		HandlerHTTPPost:  buildHTTPPost,
		HandlerRetrieval: buildRetrieval,
		HandlerFunction:  buildFunction,

		"tools.http.HTTPGetTool":  buildHTTPGet,
		"tools.http.HTTPPostTool": buildHTTPPost,
		"tools.rag.RAGTool":       buildRetrieval,
	}
}
