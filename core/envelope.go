package core

// Status is the outcome reported by an Envelope.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
	StatusClarification Status = "clarification_needed"
)

// Response formats.
const (
	FormatStructuredJSON = "structured_json"
	FormatText           = "text"
)

// SupervisorAgent is the agent name carried by envelopes the routing layer
// produces itself.
const SupervisorAgent = "SupervisorAgent"

// Supervisor intents.
const (
	IntentMultiIntent  = "multi_intent_detected"
	IntentUnclear      = "unclear"
	IntentRoutingError = "routing_error"
)

// Envelope is the uniform response returned to the upward boundary.
type Envelope struct {
	Status       Status         `json:"status"`
	Agent        string         `json:"agent"`
	Intent       string         `json:"intent"`
	Data         map[string]any `json:"data"`
	Format       string         `json:"format"`
	RendererHint map[string]any `json:"renderer_hint"`
	Metadata     map[string]any `json:"metadata"`
}

// NewSuccessEnvelope builds a success envelope. An empty format defaults to
// structured JSON.
func NewSuccessEnvelope(agent, intent, format string, data, metadata map[string]any) Envelope {
	if format == "" {
		format = FormatStructuredJSON
	}
	if data == nil {
		data = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Envelope{
		Status:       StatusSuccess,
		Agent:        agent,
		Intent:       intent,
		Data:         data,
		Format:       format,
		RendererHint: rendererHint(format),
		Metadata:     metadata,
	}
}

// NewErrorEnvelope builds an error envelope carrying the error message and
// its code.
func NewErrorEnvelope(agent, intent string, err error) Envelope {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Envelope{
		Status:       StatusError,
		Agent:        agent,
		Intent:       intent,
		Data:         map[string]any{"message": msg, "code": ErrorCode(err)},
		Format:       FormatText,
		RendererHint: map[string]any{"type": "error"},
		Metadata:     map[string]any{},
	}
}

// NewClarificationEnvelope builds the envelope asking the user to rephrase or
// split a request.
func NewClarificationEnvelope(intent, message string, detectedIntents []string) Envelope {
	data := map[string]any{"message": message}
	if len(detectedIntents) > 0 {
		data["detected_intents"] = detectedIntents
	}
	return Envelope{
		Status:       StatusClarification,
		Agent:        SupervisorAgent,
		Intent:       intent,
		Data:         data,
		Format:       FormatText,
		RendererHint: map[string]any{"type": "text"},
		Metadata:     map[string]any{},
	}
}

func rendererHint(format string) map[string]any {
	switch format {
	case FormatStructuredJSON:
		return map[string]any{"type": "json"}
	default:
		return map[string]any{"type": format}
	}
}
