// Package core provides the foundational types shared by every agenthub
// layer:
//
//   - Content / Part values exchanged with models (text and function calls)
//   - TenantContext carrying the tenant identifier and the caller's bearer credential
//   - ToolContext, the scoped surface handed to capabilities at call time
//   - Envelope, the uniform response shape returned by the routing pipeline
//   - the error taxonomy (ErrNotFound, ConfigurationError, CredentialError,
//     UnsupportedHandlerError) and its mapping onto envelope error codes
//
// Persistence, transport and provider SDKs stay out of this package.
package core
