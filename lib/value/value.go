package value

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Kind
// --------------------------------------------------------------------------

// Kind identifies the variant held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// parseKind is the inverse of Kind.String
func parseKind(s string) (Kind, error) {
	switch s {
	case "null":
		return KindNull, nil
	case "bool":
		return KindBool, nil
	case "int":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	case "string":
		return KindString, nil
	default:
		return 0, fmt.Errorf("unknown value kind %q", s)
	}
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is a tagged union of null, bool, int64, float64 and string.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a bool
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an int64
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float64
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Equal reports structural equality. Values of different kinds are never equal,
// floats follow IEEE rules (NaN != NaN, -0 == 0).
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	default:
		return false
	}
}

// Compare orders two values of the same kind.
// It returns -1, 0 or 1 and ok=true, or ok=false if the values are incomparable
// (different kinds, or a NaN float on either side).
func (v Value) Compare(other Value) (int, bool) {
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindNull:
		return 0, true
	case KindBool:
		switch {
		case v.b == other.b:
			return 0, true
		case !v.b:
			return -1, true
		default:
			return 1, true
		}
	case KindInt:
		return cmp3(v.i < other.i, v.i > other.i), true
	case KindFloat:
		if math.IsNaN(v.f) || math.IsNaN(other.f) {
			return 0, false
		}
		return cmp3(v.f < other.f, v.f > other.f), true
	case KindString:
		return cmp3(v.s < other.s, v.s > other.s), true
	default:
		return 0, false
	}
}

func cmp3(less, greater bool) int {
	if less {
		return -1
	}
	if greater {
		return 1
	}
	return 0
}

// String returns the canonical form of the value. Values of different kinds
// never share a canonical form, which makes it usable as an index key.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return "bool:" + strconv.FormatBool(v.b)
	case KindInt:
		return "int:" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		f := v.f
		if f == 0 {
			f = 0 // -0 and 0 are equal and must share a bucket
		}
		return "float:" + strconv.FormatFloat(f, 'g', -1, 64)
	case KindString:
		return "string:" + v.s
	default:
		return "null"
	}
}

// Literal returns the value in the literal syntax accepted by Parse
func (v Value) Literal() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			s += ".0" // keep it a float when parsed back
		}
		return s
	case KindString:
		return strconv.Quote(v.s)
	default:
		return "null"
	}
}

// --------------------------------------------------------------------------
// JSON and gob encoding
// --------------------------------------------------------------------------

type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes the value as {"type": ..., "value": ...}.
// Floats are encoded as strings so NaN and Inf survive the round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Type: v.kind.String()}
	var (
		raw []byte
		err error
	)
	switch v.kind {
	case KindBool:
		raw, err = json.Marshal(v.b)
	case KindInt:
		raw, err = json.Marshal(v.i)
	case KindFloat:
		raw, err = json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		raw, err = json.Marshal(v.s)
	}
	if err != nil {
		return nil, err
	}
	out.Value = raw
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, err := parseKind(in.Type)
	if err != nil {
		return err
	}
	*v = Value{kind: kind}
	switch kind {
	case KindBool:
		return json.Unmarshal(in.Value, &v.b)
	case KindInt:
		return json.Unmarshal(in.Value, &v.i)
	case KindFloat:
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return err
		}
		v.f, err = strconv.ParseFloat(s, 64)
		return err
	case KindString:
		return json.Unmarshal(in.Value, &v.s)
	}
	return nil
}

// GobEncode uses the same compact layout as AppendBinary
func (v Value) GobEncode() ([]byte, error) {
	return v.AppendBinary(nil), nil
}

func (v *Value) GobDecode(data []byte) error {
	decoded, n, err := DecodeBinary(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("trailing bytes after value: %d", len(data)-n)
	}
	*v = decoded
	return nil
}

// --------------------------------------------------------------------------
// Binary encoding
// --------------------------------------------------------------------------

// AppendBinary appends the binary form of the value to dst:
// one kind byte followed by the payload (bool: 1 byte, int/float: 8 bytes,
// string: 4 byte length + data).
func (v Value) AppendBinary(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindBool:
		if v.b {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case KindInt:
		dst = binary.BigEndian.AppendUint64(dst, uint64(v.i))
	case KindFloat:
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(v.f))
	case KindString:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(v.s)))
		dst = append(dst, v.s...)
	}
	return dst
}

// DecodeBinary reads a value written by AppendBinary and returns it together
// with the number of bytes consumed
func DecodeBinary(data []byte) (Value, int, error) {
	if len(data) < 1 {
		return Value{}, 0, fmt.Errorf("data too short for value kind")
	}
	kind := Kind(data[0])
	pos := 1
	switch kind {
	case KindNull:
		return Null(), pos, nil
	case KindBool:
		if pos+1 > len(data) {
			return Value{}, 0, fmt.Errorf("data too short for bool")
		}
		return Bool(data[pos] != 0), pos + 1, nil
	case KindInt:
		if pos+8 > len(data) {
			return Value{}, 0, fmt.Errorf("data too short for int")
		}
		return Int(int64(binary.BigEndian.Uint64(data[pos : pos+8]))), pos + 8, nil
	case KindFloat:
		if pos+8 > len(data) {
			return Value{}, 0, fmt.Errorf("data too short for float")
		}
		return Float(math.Float64frombits(binary.BigEndian.Uint64(data[pos : pos+8]))), pos + 8, nil
	case KindString:
		if pos+4 > len(data) {
			return Value{}, 0, fmt.Errorf("data too short for string length")
		}
		strLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if strLen < 0 || pos+strLen > len(data) {
			return Value{}, 0, fmt.Errorf("data too short for string data")
		}
		return String(string(data[pos : pos+strLen])), pos + strLen, nil
	default:
		return Value{}, 0, fmt.Errorf("unknown value kind %d", kind)
	}
}
