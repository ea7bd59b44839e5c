// Package schema holds the process-wide table of persisted classes and answers
// type questions about their properties.
//
// A Schema is built once from compiled class specs (see internal/compiler) and
// never mutated afterwards. Every query is a map lookup with no side effects,
// so a Schema is safe for concurrent readers.
//
// Queries never fail: an unknown class or property yields false or an absent
// result. Callers that require presence (the sanitizer, the store) check the
// result and raise their own errors.
package schema
