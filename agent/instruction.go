package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agenthub/internal/util"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/tool"
)

const immediateCallRule = "If the required parameters of a capability are already known from the entities above, call it immediately instead of asking the user for them."

// ComposeInstruction builds the system instruction of one invocation: the
// rendered prompt template, the variant suffix, the capability directory,
// the entity snapshot and the immediate call rule. A prompt that does not
// render as a template is used verbatim.
func ComposeInstruction(promptTemplate string, variant Variant, tools []tool.Tool, entities map[string]any, logger logging.Logger) (string, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	state := make(map[string]any, len(entities)+1)
	for k, v := range entities {
		state[k] = v
	}
	state["entities"] = entities

	prompt, err := util.RenderTemplate(promptTemplate, state)
	if err != nil {
		logger.Warn("agent.prompt.render_failed", "error", err.Error())
		prompt = promptTemplate
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))

	if variant.InstructionSuffix != "" {
		b.WriteString("\n\n")
		b.WriteString(variant.InstructionSuffix)
	}

	if len(tools) > 0 {
		b.WriteString("\n\nAvailable capabilities:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "- %s: %s", t.Name(), t.Description())
			if req := util.StringSlice(t.Parameters()["required"]); len(req) > 0 {
				fmt.Fprintf(&b, " (required: %s)", strings.Join(req, ", "))
			}
			b.WriteString("\n")
		}
	}

	snapshot, err := json.Marshal(entities)
	if err != nil {
		return "", fmt.Errorf("encode entities: %w", err)
	}
	b.WriteString("\nKnown entities: ")
	b.Write(snapshot)
	b.WriteString("\n\n")
	b.WriteString(immediateCallRule)

	return b.String(), nil
}
