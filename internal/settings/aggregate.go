package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"batchrvt/pkg/logging"
)

const (
	appDataFolderName   = "BatchRvt"
	settingsFileName    = "BatchRvt.Settings.json"
	settingsFileMode    = 0644
	settingsFolderMode  = 0755
	settingsIndentation = "  "
)

// DefaultSettingsFilePath returns the per-user location of the settings file.
func DefaultSettingsFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return settingsFileName
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appDataFolderName, settingsFileName)
}

// LoadReport lists the settings that fell back to their defaults during a Load.
type LoadReport struct {
	Defaulted []string
}

// AllParsed reports whether every member was read from the document.
func (r LoadReport) AllParsed() bool { return len(r.Defaulted) == 0 }

// Aggregate is an ordered collection of settings persisted as one JSON object.
// It is not safe for concurrent use.
type Aggregate struct {
	name        string
	defaultPath string
	members     []Member
	index       map[string]Member
}

// NewAggregate creates an empty aggregate. defaultPath is used by
// LoadFromFile and SaveToFile when they are given an empty path.
func NewAggregate(name, defaultPath string) *Aggregate {
	return &Aggregate{
		name:        name,
		defaultPath: defaultPath,
		index:       make(map[string]Member),
	}
}

// Register adds members in order. Setting names must be unique.
func (a *Aggregate) Register(members ...Member) error {
	for _, m := range members {
		if m == nil {
			return errors.New("cannot register a nil setting")
		}
		if _, exists := a.index[m.Name()]; exists {
			return fmt.Errorf("setting %q is already registered in %s", m.Name(), a.name)
		}
		a.members = append(a.members, m)
		a.index[m.Name()] = m
	}
	return nil
}

// MustRegister is Register for aggregates assembled at construction time.
func (a *Aggregate) MustRegister(members ...Member) {
	if err := a.Register(members...); err != nil {
		panic(err)
	}
}

// Name returns the aggregate's name.
func (a *Aggregate) Name() string { return a.name }

// Members returns the registered settings in registration order.
func (a *Aggregate) Members() []Member {
	out := make([]Member, len(a.members))
	copy(out, a.members)
	return out
}

// Lookup finds a member by name.
func (a *Aggregate) Lookup(name string) (Member, bool) {
	m, ok := a.index[name]
	return m, ok
}

// DefaultPath returns the path used when no explicit file is given.
func (a *Aggregate) DefaultPath() string { return a.defaultPath }

func (a *Aggregate) resolvePath(path string) string {
	if path == "" {
		return a.defaultPath
	}
	return path
}

// Load fans out to every member. A member that cannot be read falls back to
// its default without affecting its siblings.
func (a *Aggregate) Load(doc Document) LoadReport {
	var report LoadReport
	for _, m := range a.members {
		if m.Load(doc) == UsedDefault {
			report.Defaulted = append(report.Defaulted, m.Name())
		}
	}
	return report
}

// Store writes every member into doc.
func (a *Aggregate) Store(doc Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	var errs []error
	for _, m := range a.members {
		if err := m.Store(doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset restores every member to its default.
func (a *Aggregate) Reset() {
	for _, m := range a.members {
		m.Reset()
	}
}

// Document returns a fresh document holding the current values.
func (a *Aggregate) Document() (Document, error) {
	doc := Document{}
	if err := a.Store(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseDocument parses a JSON object. Anything other than an object is an error.
func ParseDocument(data []byte) (Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("settings document is not a JSON object")
	}
	return doc, nil
}

// ToJSONString serializes the current values as pretty-printed JSON.
func (a *Aggregate) ToJSONString() (string, error) {
	doc, err := a.Document()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", settingsIndentation)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSONString loads values from JSON text. On a parse failure it returns
// false and leaves the current values untouched.
func (a *Aggregate) FromJSONString(text string) bool {
	doc, err := ParseDocument([]byte(text))
	if err != nil {
		logging.Debug("Settings", "Rejected settings JSON for %s: %v", a.name, err)
		return false
	}
	a.Load(doc)
	return true
}

// LoadFromFile reads and applies a settings file. Missing, unreadable or
// malformed files yield false and leave the current values untouched: the
// document is fully parsed before any member is modified.
func (a *Aggregate) LoadFromFile(path string) bool {
	path = a.resolvePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Settings", "No settings file at %s", path)
		} else {
			logging.Warn("Settings", "Could not read settings file %s: %v", path, err)
		}
		return false
	}
	doc, err := ParseDocument(data)
	if err != nil {
		logging.Warn("Settings", "Settings file %s is not valid JSON: %v", path, err)
		return false
	}
	report := a.Load(doc)
	if !report.AllParsed() {
		logging.Debug("Settings", "Settings %v in %s fell back to defaults", report.Defaulted, path)
	}
	logging.Info("Settings", "Loaded %s from %s", a.name, path)
	return true
}

// SaveToFile writes the current values to path, creating the directory if
// needed. It returns false on any I/O failure.
func (a *Aggregate) SaveToFile(path string) bool {
	if err := a.saveToFile(a.resolvePath(path)); err != nil {
		logging.Error("Settings", err, "Failed to save %s", a.name)
		return false
	}
	return true
}

func (a *Aggregate) saveToFile(path string) error {
	text, err := a.ToJSONString()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, settingsFolderMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(text + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(settingsFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	logging.Info("Settings", "Saved %s to %s", a.name, path)
	return nil
}
