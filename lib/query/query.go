package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ValentinKolb/eKV/lib/value"
)

// ErrMalformed is returned (wrapped) for queries that cannot be evaluated or parsed
var ErrMalformed = errors.New("malformed query")

// --------------------------------------------------------------------------
// Operator
// --------------------------------------------------------------------------

// Operator compares a stored value with the literal of a condition
type Operator uint8

const (
	Equals Operator = iota + 1
	NotEquals
	GreaterThan
	GreaterOrEqual
	LessThan
	LessOrEqual
)

// String returns the operator symbol as used by Parse
func (o Operator) String() string {
	switch o {
	case Equals:
		return "=="
	case NotEquals:
		return "!="
	case GreaterThan:
		return ">"
	case GreaterOrEqual:
		return ">="
	case LessThan:
		return "<"
	case LessOrEqual:
		return "<="
	default:
		return fmt.Sprintf("Operator(%d)", uint8(o))
	}
}

// Valid reports whether o is one of the defined operators
func (o Operator) Valid() bool {
	return o >= Equals && o <= LessOrEqual
}

// Holds reports whether "stored op literal" is true.
// NotEquals is structural inequality (true across kinds), the ordering
// operators are false whenever the values are incomparable.
func (o Operator) Holds(stored, literal value.Value) bool {
	switch o {
	case Equals:
		return stored.Equal(literal)
	case NotEquals:
		return !stored.Equal(literal)
	}

	c, ok := stored.Compare(literal)
	if !ok {
		return false
	}
	switch o {
	case GreaterThan:
		return c > 0
	case GreaterOrEqual:
		return c >= 0
	case LessThan:
		return c < 0
	case LessOrEqual:
		return c <= 0
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Condition and Query
// --------------------------------------------------------------------------

// Condition matches a record if its key equals Field and Op holds between
// the stored value and Value
type Condition struct {
	Field string
	Op    Operator
	Value value.Value
}

// Matches evaluates the condition against one record
func (c Condition) Matches(key string, stored value.Value) bool {
	return c.Field == key && c.Op.Holds(stored, c.Value)
}

func (c Condition) String() string {
	return formatField(c.Field) + " " + c.Op.String() + " " + c.Value.Literal()
}

// Query is a conjunction of conditions. A record passes only if every
// condition matches that same record, so conditions naming different keys
// can never match together. An empty query matches every record.
type Query struct {
	Conditions []Condition
}

// New returns an empty query
func New() *Query {
	return &Query{}
}

// Where appends a condition and returns the query for chaining
func (q *Query) Where(field string, op Operator, v value.Value) *Query {
	q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Value: v})
	return q
}

// Validate checks every condition for an empty field name or an unknown operator
func (q *Query) Validate() error {
	for i, c := range q.Conditions {
		if c.Field == "" {
			return fmt.Errorf("%w: condition %d has an empty field", ErrMalformed, i)
		}
		if !c.Op.Valid() {
			return fmt.Errorf("%w: condition %d has unknown operator %s", ErrMalformed, i, c.Op)
		}
	}
	return nil
}

// Match reports whether the record passes every condition
func (q *Query) Match(key string, stored value.Value) bool {
	for _, c := range q.Conditions {
		if !c.Matches(key, stored) {
			return false
		}
	}
	return true
}

func (q *Query) String() string {
	parts := make([]string, len(q.Conditions))
	for i, c := range q.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// --------------------------------------------------------------------------
// Execution
// --------------------------------------------------------------------------

// Source is a stream of records, e.g. a storage backend
type Source interface {
	Iterate(fn func(key string, w value.Wrapped) bool) error
}

// Execute runs the query over one pass of src and returns the values of the
// matching records in iteration order. Results are not deduplicated.
func (q *Query) Execute(src Source) ([]value.Value, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var results []value.Value
	err := src.Iterate(func(key string, w value.Wrapped) bool {
		if q.Match(key, w.Value) {
			results = append(results, w.Value)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
