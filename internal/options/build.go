package options

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrNilArguments is returned when the option list itself is missing.
	// An empty, non-nil list is a valid command line with no options.
	ErrNilArguments = errors.New("command-line arguments are nil")
	// ErrInvalidPair is returned for a pair that does not name an option.
	ErrInvalidPair = errors.New("invalid command-line argument pair")
)

// Pair is one option name with its value. A nil value is skipped; true emits
// the switch alone and false omits it.
type Pair struct {
	Name  string
	Value any
}

// BuildArgs turns pairs into argument tokens.
func BuildArgs(pairs []Pair) ([]string, error) {
	if pairs == nil {
		return nil, ErrNilArguments
	}
	args := make([]string, 0, len(pairs)*2)
	for i, p := range pairs {
		name := strings.TrimSpace(p.Name)
		if name == "" || strings.HasPrefix(name, SwitchPrefix) {
			return nil, fmt.Errorf("%w at index %d: %q", ErrInvalidPair, i, p.Name)
		}
		switch v := p.Value.(type) {
		case nil:
		case bool:
			if v {
				args = append(args, SwitchPrefix+name)
			}
		case string:
			args = append(args, SwitchPrefix+name, v)
		case fmt.Stringer:
			args = append(args, SwitchPrefix+name, v.String())
		default:
			args = append(args, SwitchPrefix+name, fmt.Sprint(v))
		}
	}
	return args, nil
}

// ConstructCommandLineArguments renders pairs as a single command-line
// string, quoting values that contain whitespace or quotes.
func ConstructCommandLineArguments(pairs []Pair) (string, error) {
	args, err := BuildArgs(pairs)
	if err != nil {
		return "", err
	}
	return JoinCommandLine(args), nil
}

// JoinCommandLine quotes each token as needed and joins them with spaces.
// SplitCommandLine reverses it.
func JoinCommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' {
			return true
		}
	}
	return false
}

func quoteArg(s string) string {
	if !needsQuoting(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\' && (i+1 == len(s) || s[i+1] == '"' || s[i+1] == '\\'):
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SplitCommandLine splits s into tokens. Whitespace separates tokens outside
// double quotes. Inside double quotes a backslash escapes only a quote or
// another backslash, so Windows paths survive unquoted and quoted alike.
func SplitCommandLine(s string) []string {
	var (
		args    = make([]string, 0, 4)
		buf     strings.Builder
		inQuote bool
		started bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
			buf.WriteByte(s[i+1])
			i++
		case c == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			if started {
				args = append(args, buf.String())
				buf.Reset()
				started = false
			}
		default:
			buf.WriteByte(c)
			started = true
		}
	}
	if started {
		args = append(args, buf.String())
	}
	return args
}
