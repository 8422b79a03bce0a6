package settings

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Document is the in-memory form of a settings file: a flat JSON object keyed
// by setting name. Unknown keys are kept untouched by Load.
type Document map[string]json.RawMessage

// ErrNilDocument is returned when a setting is stored into a nil Document.
var ErrNilDocument = errors.New("settings document is nil")

// LoadResult reports how a single setting obtained its value during Load.
type LoadResult int

const (
	// Parsed means the value was read from the document.
	Parsed LoadResult = iota
	// UsedDefault means the key was missing or could not be decoded and the
	// setting fell back to its default value.
	UsedDefault
)

func (r LoadResult) String() string {
	if r == Parsed {
		return "parsed"
	}
	return "used-default"
}

// Codec converts a setting value to and from its JSON representation.
type Codec[T any] interface {
	Decode(raw json.RawMessage) (T, error)
	Encode(value T) (json.RawMessage, error)
}

// Member is the type-erased view of a Setting used by Aggregate.
type Member interface {
	Name() string
	Load(doc Document) LoadResult
	Store(doc Document) error
	Reset()
}

// Setting is one named, typed value with a default. Value never fails: a
// setting that could not be loaded holds its default.
type Setting[T any] struct {
	name         string
	value        T
	defaultValue T
	codec        Codec[T]
	normalize    func(T) T
}

// New creates a setting holding defaultValue.
func New[T any](name string, defaultValue T, codec Codec[T]) *Setting[T] {
	return &Setting[T]{
		name:         name,
		value:        defaultValue,
		defaultValue: defaultValue,
		codec:        codec,
	}
}

// Name returns the document key of the setting.
func (s *Setting[T]) Name() string { return s.name }

// Value returns the current value.
func (s *Setting[T]) Value() T { return s.value }

// Default returns the value the setting falls back to.
func (s *Setting[T]) Default() T { return s.defaultValue }

// SetValue replaces the current value.
func (s *Setting[T]) SetValue(value T) {
	if s.normalize != nil {
		value = s.normalize(value)
	}
	s.value = value
}

// Reset restores the default value.
func (s *Setting[T]) Reset() { s.value = s.defaultValue }

// Load reads the setting's key from doc. Any failure resets the value to its
// default and is reported as UsedDefault rather than as an error.
func (s *Setting[T]) Load(doc Document) LoadResult {
	raw, ok := doc[s.name]
	if !ok {
		s.Reset()
		return UsedDefault
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		s.Reset()
		return UsedDefault
	}
	s.SetValue(v)
	return Parsed
}

// Store writes the current value into doc under the setting's key.
func (s *Setting[T]) Store(doc Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	raw, err := s.codec.Encode(s.value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", s.name, err)
	}
	doc[s.name] = raw
	return nil
}
