// Package query evaluates conjunctive conditions over a stream of records.
//
// A condition (field, op, literal) matches a record only if field equals the
// record key and op holds between the stored value and the literal. A query
// passes a record only if all of its conditions match that same record. With
// the single-value record model this means that conditions naming different
// keys never match together, which callers may rely on.
//
// Queries are built with New().Where(...) or parsed from a small text form:
//
//	q, err := query.Parse(`temperature > 20 AND temperature <= 30.5`)
//	results, err := q.Execute(backend)
//
// Malformed input (empty field, unknown operator, syntax error) yields an
// error wrapping ErrMalformed.
package query
