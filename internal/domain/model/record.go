package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single name/value pair used to build records.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for building a Field from a Go scalar. It panics on
// unsupported types and is meant for literals in tests and fixtures.
func F(name string, v any) Field {
	val, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return Field{Name: name, Value: val}
}

// Record is an ordered mapping from field name to value.
// A key that is present with a null value is distinct from an absent key.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord builds a record. Later duplicates of a name overwrite the value
// but keep the original position.
func NewRecord(fields ...Field) Record {
	r := Record{values: make(map[string]Value, len(fields))}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set assigns a value, appending the key if it is new.
func (r *Record) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

// Get returns the value stored under name and whether the key is present.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value under name, null when absent.
func (r Record) Value(name string) Value {
	return r.values[name]
}

// Keys returns field names in insertion order. The slice must not be modified.
func (r Record) Keys() []string { return r.keys }

// Len returns the number of keys.
func (r Record) Len() int { return len(r.keys) }

// Fields returns the record as ordered pairs.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.keys))
	for i, k := range r.keys {
		out[i] = Field{Name: k, Value: r.values[k]}
	}
	return out
}

// MarshalJSON writes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object, keeping key order. Nested objects
// and arrays are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object", ErrInvalidRecord)
	}

	out := Record{values: make(map[string]Value)}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected key", ErrInvalidRecord)
		}
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		if _, ok := tok.(json.Delim); ok {
			return fmt.Errorf("%w: field %q is not a scalar", ErrInvalidRecord, key)
		}
		val, err := FromAny(tok)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidRecord, key, err)
		}
		out.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	*r = out
	return nil
}

func unmarshalNumber(data []byte, dst *any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

// Dataset is an ordered sequence of records.
type Dataset []Record

// Fields returns every field name in discovery order: the order in which
// names first appear when scanning records front to back.
func (d Dataset) Fields() []string {
	seen := make(map[string]struct{})
	var fields []string
	for _, r := range d {
		for _, k := range r.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			fields = append(fields, k)
		}
	}
	return fields
}

// Column returns the values of a field across all records; absent keys
// yield null.
func (d Dataset) Column(name string) []Value {
	out := make([]Value, len(d))
	for i, r := range d {
		out[i] = r.values[name]
	}
	return out
}

// NonNull returns the non-null values of a field and the indexes of the
// records they came from.
func (d Dataset) NonNull(name string) ([]Value, []int) {
	var vals []Value
	var idx []int
	for i, r := range d {
		v := r.values[name]
		if v.IsNull() {
			continue
		}
		vals = append(vals, v)
		idx = append(idx, i)
	}
	return vals, idx
}
