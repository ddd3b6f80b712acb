// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// Kind identifies the runtime type carried by a Value.
type Kind uint8

// Value kinds. The set is closed; every switch over Kind must handle all of them.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

// String returns the lower-case kind name used in reports.
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
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a scalar field value. The zero Value is null.
// Value is comparable and can be used as a map key.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float. NaN is treated as a missing value.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// FromAny converts a decoded scalar into a Value.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Float(t), nil
	case float32:
		f, err := cast.ToFloat64E(t)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return Float(f), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		i, err := cast.ToInt64E(t)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return Int(i), nil
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t)), nil
		}
		return Int(int64(t)), nil
	case json.Number:
		return fromNumber(t)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// fromNumber keeps integer literals integral and everything else as float.
func fromNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, fmt.Errorf("%w: number %q", ErrUnsupportedValue, n.String())
	}
	return Float(f), nil
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether v is an int or a float. Booleans are not numeric.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Float returns the numeric value of v and whether v is numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Key returns the value used for equality in counts and signatures. An
// integral float within int64 range compares equal to the matching int.
func (v Value) Key() Value {
	if v.kind == KindFloat && v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
		return Int(int64(v.f))
	}
	return v
}

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Any returns v as a plain Go value.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String renders v for descriptions and signatures.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return "null"
	}
}

// MarshalJSON encodes v as its natural JSON scalar. Infinite floats become strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindFloat && math.IsInf(v.f, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes a JSON scalar into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := unmarshalNumber(data, &raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
