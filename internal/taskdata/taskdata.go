// Package taskdata holds the free-form data handed to a task script.
//
// Task data travels as JSON text (the task_data option and the taskData
// setting). Data keeps it schema-less and offers typed accessors that report
// a missing key or a decode error instead of performing unchecked casts.
package taskdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingKey is returned by the typed accessors when a key is absent.
	ErrMissingKey = errors.New("task data key not found")
	// ErrNullValue is returned by the typed accessors when a key holds null.
	ErrNullValue = errors.New("task data value is null")
)

// Data is a key to JSON value map.
type Data map[string]json.RawMessage

// New returns empty task data.
func New() Data { return Data{} }

// Parse reads task data from JSON object text. Blank text yields empty data.
func Parse(text string) (Data, error) {
	if strings.TrimSpace(text) == "" {
		return New(), nil
	}
	var d Data
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("task data is not a JSON object: %w", err)
	}
	if d == nil {
		return nil, errors.New("task data is not a JSON object")
	}
	return d, nil
}

// Encode returns the compact JSON text of d.
func (d Data) Encode() (string, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]json.RawMessage(d))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Set stores value under key.
func (d Data) Set(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode task data %q: %w", key, err)
	}
	d[key] = b
	return nil
}

// SetRaw stores text under key, keeping it as JSON when it is valid JSON and
// as a string otherwise.
func (d Data) SetRaw(key, text string) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) > 0 && json.Valid(trimmed) {
		d[key] = json.RawMessage(trimmed)
		return
	}
	b, _ := json.Marshal(text)
	d[key] = b
}

// Has reports whether key is present.
func (d Data) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Keys returns the keys in sorted order.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get decodes the value under key into out.
func (d Data) Get(key string, out any) error {
	raw, ok := d[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("task data %q: %w", key, err)
	}
	return nil
}

// getValue is Get for the typed accessors, where null has no zero value to
// stand in for.
func (d Data) getValue(key string, out any) error {
	if raw, ok := d[key]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: %s", ErrNullValue, key)
	}
	return d.Get(key, out)
}

// String returns the string under key.
func (d Data) String(key string) (string, error) {
	var s string
	err := d.getValue(key, &s)
	return s, err
}

// Int returns the integer under key.
func (d Data) Int(key string) (int, error) {
	var n int
	err := d.getValue(key, &n)
	return n, err
}

// Bool returns the boolean under key.
func (d Data) Bool(key string) (bool, error) {
	var b bool
	err := d.getValue(key, &b)
	return b, err
}

// StringOr returns the string under key, or fallback when it is missing or
// not a string.
func (d Data) StringOr(key, fallback string) string {
	s, err := d.String(key)
	if err != nil {
		return fallback
	}
	return s
}
