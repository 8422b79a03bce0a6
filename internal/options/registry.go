package options

import (
	"fmt"
	"sort"
	"strings"
)

// SwitchPrefix introduces every option on the command line.
const SwitchPrefix = "--"

// Option is one entry of the command-line vocabulary. An option without a
// parser is a flag: its presence alone means true.
type Option struct {
	Name        string
	Parser      Parser
	Description string
}

// RequiresValue reports whether the option expects a value token.
func (o Option) RequiresValue() bool { return o.Parser != nil }

// Switch returns the command-line spelling of the option.
func (o Option) Switch() string { return SwitchPrefix + o.Name }

// Registry is a fixed vocabulary of options. Names are case-insensitive.
type Registry struct {
	options []Option
	byName  map[string]Option
}

// NewRegistry builds a registry. Names must be non-empty and unique ignoring case.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{byName: make(map[string]Option, len(opts))}
	for _, o := range opts {
		key := strings.ToLower(strings.TrimSpace(o.Name))
		if key == "" {
			return nil, fmt.Errorf("option name cannot be empty")
		}
		if strings.HasPrefix(key, SwitchPrefix) {
			return nil, fmt.Errorf("option name %q must not include the %s prefix", o.Name, SwitchPrefix)
		}
		if _, exists := r.byName[key]; exists {
			return nil, fmt.Errorf("option %q is registered twice", o.Name)
		}
		o.Name = key
		r.options = append(r.options, o)
		r.byName[key] = o
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for vocabularies fixed at compile time.
func MustNewRegistry(opts ...Option) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Options returns the vocabulary in registration order.
func (r *Registry) Options() []Option {
	out := make([]Option, len(r.options))
	copy(out, r.options)
	return out
}

// Lookup finds an option by name, ignoring case and an optional prefix.
func (r *Registry) Lookup(name string) (Option, bool) {
	o, ok := r.byName[strings.ToLower(strings.TrimPrefix(name, SwitchPrefix))]
	return o, ok
}

// IsValid reports whether name belongs to the vocabulary.
func (r *Registry) IsValid(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// findSwitch returns the index of the first token matching sw, skipping argv[0].
func findSwitch(argv []string, sw string) int {
	for i := 1; i < len(argv); i++ {
		if strings.EqualFold(argv[i], sw) {
			return i
		}
	}
	return -1
}

// Parse reads every registered option from argv; argv[0] is the program path
// and is skipped. The result has an entry for every option: flags map to
// their presence, valued options to their parsed value or nil. A valued
// option followed by another switch, or by nothing, is present without a value.
func (r *Registry) Parse(argv []string) Values {
	values := make(Values, len(r.options))
	for _, o := range r.options {
		i := findSwitch(argv, o.Switch())
		if !o.RequiresValue() {
			values[o.Name] = i >= 0
			continue
		}
		values[o.Name] = nil
		if i < 0 || i+1 >= len(argv) {
			continue
		}
		next := argv[i+1]
		if strings.HasPrefix(next, SwitchPrefix) {
			continue
		}
		if v, ok := o.Parser(next); ok {
			values[o.Name] = v
		}
	}
	return values
}

// InvalidOptions returns, lower-cased and in first-seen order, every switch
// in argv that is not part of the vocabulary.
func (r *Registry) InvalidOptions(argv []string) []string {
	var invalid []string
	seen := make(map[string]bool)
	for i := 1; i < len(argv); i++ {
		if !strings.HasPrefix(argv[i], SwitchPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(argv[i], SwitchPrefix))
		if _, ok := r.byName[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		invalid = append(invalid, name)
	}
	return invalid
}

// Values maps option names to parsed values.
type Values map[string]any

// Has reports whether the option carries a value or, for flags, is present.
func (v Values) Has(name string) bool {
	switch x := v[strings.ToLower(name)].(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}

// String returns a text value.
func (v Values) String(name string) (string, bool) {
	s, ok := v[strings.ToLower(name)].(string)
	return s, ok
}

// Int returns an integer value.
func (v Values) Int(name string) (int, bool) {
	n, ok := v[strings.ToLower(name)].(int)
	return n, ok
}

// Bool returns a flag's presence or a boolean value.
func (v Values) Bool(name string) bool {
	b, _ := v[strings.ToLower(name)].(bool)
	return b
}

// Names returns the option names in sorted order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MissingValues returns, in registry order, the valued options that appear
// in argv without an acceptable value.
func (r *Registry) MissingValues(argv []string) []string {
	var missing []string
	values := r.Parse(argv)
	for _, o := range r.options {
		if !o.RequiresValue() || values[o.Name] != nil {
			continue
		}
		if findSwitch(argv, o.Switch()) >= 0 {
			missing = append(missing, o.Name)
		}
	}
	return missing
}
