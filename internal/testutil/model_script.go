package testutil

import (
	"strings"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/model"
)

// ModelScript scripts the three request kinds one tenant model serves:
// routing classification, entity extraction and agent completion.
type ModelScript struct {
	// Route is the classifier answer (agent name or routing token).
	Route string
	// Extraction is the raw JSON returned for extraction requests.
	Extraction string
	// Completion is returned for agent requests.
	Completion model.Response
}

// NewScriptedModel returns a MockModel answering by request kind.
func NewScriptedModel(s ModelScript) *model.MockModel {
	if s.Extraction == "" {
		s.Extraction = `{"intent": "query", "entities": {}}`
	}
	return model.NewMockModel("mock-model", "mock").OnGenerate(func(req model.Request) (model.Response, error) {
		switch {
		case req.ResponseFormat == model.FormatJSON:
			return model.TextResponse(s.Extraction), nil
		case IsRoutingRequest(req):
			return model.TextResponse(s.Route), nil
		default:
			return s.Completion, nil
		}
	})
}

// IsRoutingRequest reports whether req is a supervisor classification request.
func IsRoutingRequest(req model.Request) bool {
	return strings.Contains(req.Instructions, "routes user messages to specialized agents")
}

// CallCapability builds a completion requesting one capability call.
func CallCapability(text, id, name, arguments string) model.Response {
	return model.FunctionCallResponse(text, core.FunctionCall{ID: id, Name: name, Arguments: arguments})
}
