package agent

// Variant identifiers.
const (
	VariantDefault  = "default"
	VariantDebt     = "debt"
	VariantAnalysis = "analysis"
)

// Variant customizes the generic domain handler.
type Variant struct {
	Name string

	// InstructionSuffix is appended to the rendered prompt template.
	InstructionSuffix string

	// Metadata is merged into the envelope metadata.
	Metadata map[string]any
}

const citationInstruction = `You have access to a knowledge base retrieval capability.
When answering questions:
1. Use the retrieval capability to search for relevant information
2. Cite sources from the retrieved documents in your response
3. If no relevant information is found, acknowledge this
4. Combine retrieved information with your reasoning

Format citations as: [Source: <metadata_info>]`

// DefaultVariants returns the closed variant registry keyed by handler
// identifier, including legacy identifiers.
func DefaultVariants() map[string]Variant {
	generic := Variant{Name: VariantDefault}
	debt := Variant{Name: VariantDebt}
	analysis := Variant{
		Name:              VariantAnalysis,
		InstructionSuffix: citationInstruction,
		Metadata:          map[string]any{"supports_citations": true},
	}

	return map[string]Variant{
		"":              generic,
		VariantDefault:  generic,
		VariantDebt:     debt,
		VariantAnalysis: analysis,
		"AgentDebt":     debt,
		"AgentAnalysis": analysis,
		"DomainAgent":   generic,
	}
}
