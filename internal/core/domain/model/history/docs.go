// Package history models the field level audit trail of the order engine.
//
// A mutation produces one Entry per changed tracked attribute. Entries that belong
// to the same mutation share a batch id and keep their position inside it, so the
// ordered change list of a mutation can be rebuilt from the normalized rows.
//
// Timestamp attributes are never tracked. Entries are immutable once created.
package history
