// Package agent implements the domain handler: a catalog-configured agent
// that extracts entities from the message, composes its instruction from the
// stored prompt template and its available capabilities, calls its bound
// model with tool calling enabled and executes the requested capability calls
// with per-call failure containment.
//
// Behaviour variants (default, debt, analysis) are selected from a closed
// registry by the agent's handler identifier. Invoke never returns an error:
// every failure is converted into an error envelope.
package agent
