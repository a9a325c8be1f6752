// Package testutil contains helper builders used across tests and examples
// to reduce boilerplate when seeding a catalog and scripting model replies.
// They are not intended for production usage.
package testutil
