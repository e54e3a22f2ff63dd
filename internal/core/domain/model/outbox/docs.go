// Package outbox holds domain events recorded inside a mutation transaction.
// A relay job publishes them after commit, so a rolled back mutation never
// emits an event.
package outbox
