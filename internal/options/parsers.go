package options

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parser converts the raw text following a switch into a typed value. It
// reports false when the text is not acceptable.
type Parser func(text string) (any, bool)

// FreeText accepts any text unchanged.
func FreeText(text string) (any, bool) {
	return text, true
}

func absolutePath(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	abs, err := filepath.Abs(text)
	if err != nil {
		return "", false
	}
	return abs, true
}

// ExistingFile resolves text to an absolute path naming an existing file.
func ExistingFile(text string) (any, bool) {
	abs, ok := absolutePath(text)
	if !ok {
		return nil, false
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, false
	}
	return abs, true
}

// ExistingFolder resolves text to an absolute path naming an existing directory.
func ExistingFolder(text string) (any, bool) {
	abs, ok := absolutePath(text)
	if !ok {
		return nil, false
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	return abs, true
}

// PositiveInt accepts decimal integers greater than zero.
func PositiveInt(text string) (any, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return nil, false
	}
	return n, true
}

// Boolean accepts true/yes and false/no, case-insensitively.
func Boolean(text string) (any, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	default:
		return nil, false
	}
}

// OneOf accepts exactly one of vocabulary, compared case-insensitively, and
// yields the vocabulary spelling.
func OneOf(vocabulary ...string) Parser {
	words := append([]string(nil), vocabulary...)
	return func(text string) (any, bool) {
		text = strings.TrimSpace(text)
		for _, w := range words {
			if strings.EqualFold(w, text) {
				return w, true
			}
		}
		return nil, false
	}
}
