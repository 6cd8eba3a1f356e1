package query

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ValentinKolb/eKV/lib/value"
)

// sliceSource is a Source over a fixed list of records
type sliceSource []struct {
	key string
	val value.Value
}

func (s sliceSource) Iterate(fn func(key string, w value.Wrapped) bool) error {
	for _, r := range s {
		if !fn(r.key, value.Wrapped{Value: r.val}) {
			break
		}
	}
	return nil
}

type failingSource struct{}

func (failingSource) Iterate(func(string, value.Wrapped) bool) error {
	return errors.New("corrupted entry")
}

func dataset() sliceSource {
	return sliceSource{
		{"a", value.Int(5)},
		{"b", value.Int(10)},
	}
}

func valuesEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestSingleCondition(t *testing.T) {
	tests := []struct {
		name string
		q    *Query
		want []value.Value
	}{
		{"a > 3", New().Where("a", GreaterThan, value.Int(3)), []value.Value{value.Int(5)}},
		{"a > 10", New().Where("a", GreaterThan, value.Int(10)), nil},
		{"b >= 10", New().Where("b", GreaterOrEqual, value.Int(10)), []value.Value{value.Int(10)}},
		{"a == 5", New().Where("a", Equals, value.Int(5)), []value.Value{value.Int(5)}},
		{"a < 5", New().Where("a", LessThan, value.Int(5)), nil},
		{"a <= 5", New().Where("a", LessOrEqual, value.Int(5)), []value.Value{value.Int(5)}},
		{"a > float", New().Where("a", GreaterThan, value.Float(1)), nil},
		{"a != string", New().Where("a", NotEquals, value.String("5")), []value.Value{value.Int(5)}},
		{"unknown key", New().Where("c", NotEquals, value.Int(0)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.Execute(dataset())
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if !valuesEqual(got, tt.want) {
				t.Errorf("Execute = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConjunctionOfDistinctKeysIsEmpty(t *testing.T) {
	q := New().
		Where("a", Equals, value.Int(5)).
		Where("b", Equals, value.Int(10))

	got, err := q.Execute(dataset())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("conditions on different keys must never match together, got %v", got)
	}

	// conditions on the same key combine
	q = New().
		Where("b", GreaterThan, value.Int(5)).
		Where("b", LessOrEqual, value.Int(10))
	got, _ = q.Execute(dataset())
	if !valuesEqual(got, []value.Value{value.Int(10)}) {
		t.Errorf("range on one key should match, got %v", got)
	}
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	got, err := New().Execute(dataset())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !valuesEqual(got, []value.Value{value.Int(5), value.Int(10)}) {
		t.Errorf("empty query should return every value in order, got %v", got)
	}
}

func TestIncomparableIsFalse(t *testing.T) {
	nan := value.Float(math.NaN())
	for _, op := range []Operator{GreaterThan, GreaterOrEqual, LessThan, LessOrEqual, Equals} {
		if op.Holds(nan, value.Float(1)) {
			t.Errorf("%s must not hold for NaN", op)
		}
	}
	if !NotEquals.Holds(nan, nan) {
		t.Errorf("NaN != NaN should hold")
	}
	if GreaterThan.Holds(value.String("b"), value.Int(1)) {
		t.Errorf("ordering across kinds must be false")
	}
}

func TestValidate(t *testing.T) {
	if _, err := New().Where("", Equals, value.Int(1)).Execute(dataset()); !errors.Is(err, ErrMalformed) {
		t.Errorf("empty field should be malformed, got %v", err)
	}
	if _, err := New().Where("a", Operator(0), value.Int(1)).Execute(dataset()); !errors.Is(err, ErrMalformed) {
		t.Errorf("unknown operator should be malformed, got %v", err)
	}
	if _, err := New().Execute(failingSource{}); err == nil {
		t.Errorf("iteration errors must be propagated")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want *Query
	}{
		{``, New()},
		{`a > 3`, New().Where("a", GreaterThan, value.Int(3))},
		{`a>3`, New().Where("a", GreaterThan, value.Int(3))},
		{`a = "x y"`, New().Where("a", Equals, value.String("x y"))},
		{`"my key" <> null`, New().Where("my key", NotEquals, value.Null())},
		{`t >= -1.5 and t <= 2e3`, New().Where("t", GreaterOrEqual, value.Float(-1.5)).Where("t", LessOrEqual, value.Float(2000))},
		{`flag == true AND n < 10 AND s != "a=b"`, New().
			Where("flag", Equals, value.Bool(true)).
			Where("n", LessThan, value.Int(10)).
			Where("s", NotEquals, value.String("a=b"))},
		{`à = 1`, New().Where("à", Equals, value.Int(1))},
		{`Å>=2 AND größe < 3`, New().Where("Å", GreaterOrEqual, value.Int(2)).Where("größe", LessThan, value.Int(3))},
		{"k\u00a0= 1", New().Where("k", Equals, value.Int(1))},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(got.Conditions) != len(tt.want.Conditions) {
				t.Fatalf("Parse = %s, want %s", got, tt.want)
			}
			for i, c := range got.Conditions {
				w := tt.want.Conditions[i]
				if c.Field != w.Field || c.Op != w.Op || !c.Value.Equal(w.Value) || c.Value.Kind() != w.Value.Kind() {
					t.Errorf("condition %d = %s, want %s", i, c, w)
				}
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, expr := range []string{
		`a`,
		`a >`,
		`a > hello`,
		`> 3`,
		`a ! 3`,
		`a > 3 b < 4`,
		`a > 3 AND`,
		`a > "unterminated`,
		`"" == 1`,
		`a > > 3`,
	} {
		if _, err := Parse(expr); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) should fail with ErrMalformed, got %v", expr, err)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	q := New().
		Where("plain", Equals, value.Int(1)).
		Where("with space", NotEquals, value.String("quote \" inside")).
		Where("and", GreaterThan, value.Float(2)).
		Where("x", LessOrEqual, value.Null()).
		Where("à", Equals, value.Int(2)).
		Where("Åa\u00a0b", Equals, value.Int(3)).
		Where("bad\xc3", Equals, value.Int(4))

	parsed, err := Parse(q.String())
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", q, err)
	}
	if parsed.String() != q.String() {
		t.Errorf("round trip changed the query: %s -> %s", q, parsed)
	}
	for i, c := range parsed.Conditions {
		if c.Field != q.Conditions[i].Field {
			t.Errorf("field %d = %q, want %q", i, c.Field, q.Conditions[i].Field)
		}
	}
	if !strings.Contains(q.String(), "à "+Equals.String()) {
		t.Errorf("non-ASCII field should stay a bare word: %s", q)
	}
}

func TestParseNonASCIIFieldMatches(t *testing.T) {
	src := sliceSource{
		{"à", value.Int(1)},
		{"Å", value.Int(1)},
	}
	for _, expr := range []string{`à = 1`, `Å = 1`, `"à" = 1`} {
		q, err := Parse(expr)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", expr, err)
		}
		got, err := q.Execute(src)
		if err != nil {
			t.Fatalf("Execute(%q) failed: %v", expr, err)
		}
		if len(got) != 1 {
			t.Errorf("%q should match exactly one record, got %d (field %q)", expr, len(got), q.Conditions[0].Field)
		}
	}
}
