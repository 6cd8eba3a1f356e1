// Package value defines the data model of the store.
//
// Value is a tagged union (null, bool, int, float, string) with structural
// equality and a partial order: only values of the same kind are comparable,
// and a NaN float is incomparable to everything. Callers that evaluate
// conditions must treat "incomparable" as "condition not satisfied".
//
// Wrapped pairs a Value with an optional absolute expiration instant. Whether
// a Wrapped is expired is computed on every call against the supplied "now",
// so concurrent readers never observe a stale cached flag.
//
// The package also provides the compact binary layout (AppendBinary,
// DecodeBinary) used by the codec package, JSON and gob encodings, and the
// literal syntax (Parse) shared by the query language and the CLI.
package value
