// Package supervisor classifies an incoming message among the tenant's
// enabled agents and dispatches it to the matching domain handler, or asks
// the user for clarification when the message is ambiguous or carries
// several requests.
package supervisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hupe1980/agenthub/agent"
	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/internal/llmparse"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/metrics"
	"github.com/hupe1980/agenthub/model"
)

const tracerName = "github.com/hupe1980/agenthub/supervisor"

// Classification tokens besides agent names.
const (
	TokenMultiIntent = "MULTI_INTENT"
	TokenUnclear     = "UNCLEAR"
)

// Invoker handles a message routed to one agent.
type Invoker interface {
	Invoke(ctx context.Context, message string) core.Envelope
}

// HandlerFactory builds the domain handler of a classified agent from the
// descriptor loaded when the supervisor was created.
type HandlerFactory func(ctx context.Context, deps agent.Dependencies, tenant core.TenantContext, desc catalog.AgentDescriptor) (Invoker, error)

// DefaultHandlerFactory builds agent.Handler values.
func DefaultHandlerFactory(ctx context.Context, deps agent.Dependencies, tenant core.TenantContext, desc catalog.AgentDescriptor) (Invoker, error) {
	return agent.NewFromDescriptor(ctx, deps, tenant, desc)
}

// Options configures a Supervisor.
type Options struct {
	// RoutingModelID selects the classification model. Empty uses the
	// tenant's default model.
	RoutingModelID string

	NewHandler HandlerFactory
}

// Supervisor routes messages for one tenant and caller.
type Supervisor struct {
	deps        agent.Dependencies
	tenant      core.TenantContext
	opts        Options
	llm         model.Model
	agents      map[string]catalog.AgentDescriptor
	valid       []string
	instruction string
	logger      logging.Logger
}

// New resolves the routing model and loads the tenant's enabled agents.
func New(ctx context.Context, deps agent.Dependencies, tenant core.TenantContext, optFns ...func(o *Options)) (*Supervisor, error) {
	opts := Options{
		NewHandler: DefaultHandlerFactory,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOpLogger{}
	}

	llm, err := deps.Models.GetClient(ctx, tenant.TenantID, opts.RoutingModelID)
	if err != nil {
		return nil, err
	}

	enabled, err := deps.Store.EnabledAgents(ctx, tenant.TenantID)
	if err != nil {
		return nil, fmt.Errorf("load enabled agents: %w", err)
	}

	agents := make(map[string]catalog.AgentDescriptor, len(enabled))
	valid := make([]string, 0, len(enabled)+2)
	for _, a := range enabled {
		agents[a.Name] = a
		valid = append(valid, a.Name)
	}
	if len(enabled) > 0 {
		valid = append(valid, TokenMultiIntent)
	}
	valid = append(valid, TokenUnclear)

	return &Supervisor{
		deps:        deps,
		tenant:      tenant,
		opts:        opts,
		llm:         llm,
		agents:      agents,
		valid:       valid,
		instruction: RoutingInstruction(enabled),
		logger:      logging.With(deps.Logger, "tenant_id", tenant.TenantID),
	}, nil
}

// ValidTokens returns the answers the classifier may give.
func (s *Supervisor) ValidTokens() []string { return append([]string{}, s.valid...) }

// Route classifies message and returns the resulting envelope. It never
// panics and never returns a raw failure.
func (s *Supervisor) Route(ctx context.Context, message string) (env core.Envelope) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "supervisor.route")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", s.tenant.TenantID))

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("supervisor.route.panic", "recover", r)
			env = s.routingError(fmt.Errorf("panic recovered: %v", r))
		}
	}()

	lang := DetectLanguage(message)

	token, err := s.classify(ctx, message, lang)
	if err != nil {
		return s.routingError(err)
	}

	s.logger.Info("supervisor.route.classified", "agent", token, "language", lang)
	span.SetAttributes(attribute.String("route.token", token))

	msgs := clarificationFor(lang)
	switch token {
	case TokenMultiIntent:
		s.deps.Metrics.RecordRoute(metrics.OutcomeMultiIntent)
		return core.NewClarificationEnvelope(core.IntentMultiIntent, msgs.multiIntent, []string{"debt", "other"})
	case TokenUnclear:
		s.deps.Metrics.RecordRoute(metrics.OutcomeUnclear)
		return core.NewClarificationEnvelope(core.IntentUnclear, msgs.unclear, nil)
	}

	handler, err := s.opts.NewHandler(ctx, s.deps, s.tenant, s.agents[token])
	if err != nil {
		return s.routingError(err)
	}

	env = handler.Invoke(ctx, message)

	outcome := metrics.OutcomeAgent
	if env.Status == core.StatusError {
		outcome = metrics.OutcomeError
	}
	s.deps.Metrics.RecordRoute(outcome)

	s.logger.Info("supervisor.route.completed", "agent", token, "status", string(env.Status))

	return env
}

// classify asks the routing model for one token. Answers outside the valid
// set are treated as UNCLEAR.
func (s *Supervisor) classify(ctx context.Context, message, lang string) (string, error) {
	if s.deps.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := model.Collect(ctx, s.llm, model.Request{
		Instructions: s.instruction + "\n\n" + languageHint(lang),
		Contents:     []core.Content{core.NewUserContent(message)},
	})
	dur := time.Since(start)
	s.deps.Metrics.RecordModelCall("classify", dur, err)
	logging.LogModelCall(s.logger, s.llm.Info().Name, dur, err)
	if err != nil {
		return "", fmt.Errorf("classify message: %w", err)
	}

	token, ok := llmparse.Label(resp.Text(), s.valid)
	if !ok {
		s.logger.Warn("supervisor.route.invalid_answer", "answer", token)
		return TokenUnclear, nil
	}
	return token, nil
}

func (s *Supervisor) routingError(err error) core.Envelope {
	s.deps.Metrics.RecordRoute(metrics.OutcomeError)
	s.logger.Error("supervisor.route.failed", "error", err.Error())
	return core.NewErrorEnvelope(core.SupervisorAgent, core.IntentRoutingError, err)
}

// RoutingInstruction builds the classification instruction for agents.
func RoutingInstruction(agents []catalog.AgentDescriptor) string {
	var b strings.Builder
	b.WriteString("You are a supervisor that routes user messages to specialized agents.\n\n")

	if len(agents) > 0 {
		b.WriteString("Available agents:\n")
		for _, a := range agents {
			fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Description)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No agents are available.\n\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- If the message contains a single request that one agent handles, answer with that agent's name.\n")
	fmt.Fprintf(&b, "- If the message asks about two or more different topics, answer %s.\n", TokenMultiIntent)
	fmt.Fprintf(&b, "- If the message is ambiguous or no agent fits, answer %s.\n\n", TokenUnclear)

	tokens := make([]string, 0, len(agents)+2)
	for _, a := range agents {
		tokens = append(tokens, fmt.Sprintf("%q", a.Name))
	}
	if len(agents) > 0 {
		tokens = append(tokens, fmt.Sprintf("%q", TokenMultiIntent))
	}
	tokens = append(tokens, fmt.Sprintf("%q", TokenUnclear))

	fmt.Fprintf(&b, "Respond with ONLY ONE of: %s\nNo explanations, no additional text.", strings.Join(tokens, ", "))
	return b.String()
}
