// Package provider implements ports.DeliveryProvider.
//
// Client talks JSON over HTTP to the integrated delivery service. Every call
// is bounded by a timeout and an outbound rate limit, and is observed by
// metrics.ProviderMetrics. A 2xx answer with success=true is a success; any
// other answer the service explains in its body is a business refusal, and
// only transport failures, 5xx answers and unreadable bodies are errors.
//
// Fake is an in-memory provider for local runs and tests.
package provider
