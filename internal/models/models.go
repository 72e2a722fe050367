package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/huandu/go-clone"
)

// Kind identifies which JSON type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value. It is one of Null, Bool, Number, String, Array or
// *Object. A nil Value means the value is absent, which is not the same as
// Null.
type Value interface {
	Kind() Kind
	json.Marshaler
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number, kept as its literal text so integers of any size
// survive a round trip.
type Number string

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(json.Number(n))
}

func (s String) MarshalJSON() ([]byte, error) {
	return marshalString(string(s))
}

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := marshalValue(elem)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Object is a JSON object. Keys keep their insertion order for output; the
// order carries no meaning for comparison.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key. A new key goes to the end, an existing key keeps
// its position.
func (o *Object) Set(key string, v Value) *Object {
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
	return o
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, exists := o.fields[key]; !exists {
		return
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Copy returns a shallow copy: a new key list and map holding the same
// values.
func (o *Object) Copy() *Object {
	out := &Object{
		keys:   make([]string, len(o.keys)),
		fields: make(map[string]Value, len(o.fields)),
	}
	copy(out.keys, o.keys)
	for k, v := range o.fields {
		out.fields[k] = v
	}
	return out
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		data, err := marshalValue(o.fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IsObject reports whether v is a plain object.
func IsObject(v Value) bool {
	_, ok := v.(*Object)
	return ok
}

// IsArray reports whether v is an array.
func IsArray(v Value) bool {
	_, ok := v.(Array)
	return ok
}

// IsEmpty reports whether v is absent or null.
func IsEmpty(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	if v == nil {
		return nil
	}
	return clone.Clone(v).(Value)
}

// Marshal encodes v as compact JSON. An absent value encodes as null.
func Marshal(v Value) ([]byte, error) {
	return marshalValue(v)
}

// RenameKeys returns a copy of v with every object key passed through fn.
// When two keys map to the same name the later one wins.
func RenameKeys(v Value, fn func(string) string) Value {
	switch t := v.(type) {
	case *Object:
		out := NewObject()
		for _, key := range t.keys {
			out.Set(fn(key), RenameKeys(t.fields[key], fn))
		}
		return out
	case Array:
		out := make(Array, len(t))
		for i, elem := range t {
			out[i] = RenameKeys(elem, fn)
		}
		return out
	default:
		return v
	}
}

// DropKeys returns a copy of v without the object keys for which drop
// returns true, at any depth.
func DropKeys(v Value, drop func(string) bool) Value {
	switch t := v.(type) {
	case *Object:
		out := NewObject()
		for _, key := range t.keys {
			if drop(key) {
				continue
			}
			out.Set(key, DropKeys(t.fields[key], drop))
		}
		return out
	case Array:
		out := make(Array, len(t))
		for i, elem := range t {
			out[i] = DropKeys(elem, drop)
		}
		return out
	default:
		return v
	}
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return v.MarshalJSON()
}

// marshalString encodes s without the HTML escaping encoding/json applies by
// default.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
