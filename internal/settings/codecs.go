package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var jsonNull = []byte("null")

// jsonCodec decodes a value of exactly the JSON kind T maps to.
type jsonCodec[T any] struct{}

func (jsonCodec[T]) Decode(raw json.RawMessage) (T, error) {
	var v T
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return v, fmt.Errorf("null value")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

func (jsonCodec[T]) Encode(value T) (json.RawMessage, error) {
	return json.Marshal(value)
}

// NewBool creates a boolean setting.
func NewBool(name string, defaultValue bool) *Setting[bool] {
	return New[bool](name, defaultValue, jsonCodec[bool]{})
}

// NewInt creates an integer setting. Fractional JSON numbers are rejected.
func NewInt(name string, defaultValue int) *Setting[int] {
	return New[int](name, defaultValue, jsonCodec[int]{})
}

// IsBlank reports whether s is empty or whitespace-only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func normalizeString(s string) string {
	if IsBlank(s) {
		return ""
	}
	return s
}

type stringCodec struct{}

func (stringCodec) Decode(raw json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return normalizeString(s), nil
}

func (stringCodec) Encode(value string) (json.RawMessage, error) {
	return json.Marshal(normalizeString(value))
}

// NewString creates a free-text setting. Null, empty and whitespace-only text
// all collapse to the empty string, on both read and write.
func NewString(name string, defaultValue string) *Setting[string] {
	s := New[string](name, normalizeString(defaultValue), stringCodec{})
	s.normalize = normalizeString
	return s
}

// EnumNames maps the members of an integer enumeration to their symbolic names.
type EnumNames[E ~int] map[E]string

// Parse returns the member whose name matches text exactly.
func (n EnumNames[E]) Parse(text string) (E, bool) {
	for member, name := range n {
		if name == text {
			return member, true
		}
	}
	var zero E
	return zero, false
}

type enumCodec[E ~int] struct {
	names EnumNames[E]
}

func (c enumCodec[E]) Decode(raw json.RawMessage) (E, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var zero E
		return zero, err
	}
	member, ok := c.names.Parse(text)
	if !ok {
		return member, fmt.Errorf("unknown enumeration member %q", text)
	}
	return member, nil
}

func (c enumCodec[E]) Encode(value E) (json.RawMessage, error) {
	name, ok := c.names[value]
	if !ok {
		return nil, fmt.Errorf("enumeration value %d has no name", int(value))
	}
	return json.Marshal(name)
}

// NewEnum creates an enumeration setting serialized by member name, so the
// file stays valid when members are reordered.
func NewEnum[E ~int](name string, defaultValue E, names EnumNames[E]) *Setting[E] {
	return New[E](name, defaultValue, enumCodec[E]{names: names})
}

type listCodec[T any] struct {
	elem Codec[T]
}

func (c listCodec[T]) Decode(raw json.RawMessage) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("null list")
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := c.elem.Decode(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c listCodec[T]) Encode(value []T) (json.RawMessage, error) {
	items := make([]json.RawMessage, 0, len(value))
	for _, v := range value {
		raw, err := c.elem.Encode(v)
		if err != nil {
			return nil, err
		}
		items = append(items, raw)
	}
	return json.Marshal(items)
}

func nonNilList[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// NewList creates an ordered list setting of scalars. The value is never nil;
// an absent or broken key yields an empty list.
func NewList[T any](name string, elem Codec[T]) *Setting[[]T] {
	s := New[[]T](name, []T{}, listCodec[T]{elem: elem})
	s.normalize = nonNilList[T]
	return s
}

// StringCodec is the element codec for lists of free text.
func StringCodec() Codec[string] { return stringCodec{} }

// IntCodec is the element codec for lists of integers.
func IntCodec() Codec[int] { return jsonCodec[int]{} }
