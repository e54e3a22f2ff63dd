// Package http is the inbound REST adapter of the order engine.
//
// Routes are served by echo. Every documented request is checked against the
// embedded OpenAPI document before it reaches a handler; bodies are then bound
// into request structs and checked again with validator tags. Callers
// authenticate with a bearer JWT carrying their role and capabilities, except
// the delivery provider, which presents the shared webhook token.
//
// Errors returned by handlers are rendered by ErrorHandler as
// {"code", "message", "field"} with the status derived from the error kind.
package http
