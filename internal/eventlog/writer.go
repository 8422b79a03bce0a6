package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"batchrvt/pkg/logging"
)

const (
	logFilePrefix    = "BatchRvt_"
	logFileExtension = ".log"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// FilePath returns the log file used by sessionID inside folder.
func FilePath(folder, sessionID string) string {
	return filepath.Join(folder, logFilePrefix+unsafeFileChars.ReplaceAllString(sessionID, "_")+logFileExtension)
}

// Option customizes a Writer.
type Option func(*Writer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// Writer appends entries for one session to a newline-delimited JSON file.
// Failures never propagate: every method reports success as a boolean.
type Writer struct {
	path      string
	sessionID string
	now       func() time.Time

	mu   sync.Mutex
	file *os.File
}

// NewWriter creates a writer for path stamping every entry with sessionID.
func NewWriter(path, sessionID string, opts ...Option) *Writer {
	w := &Writer{
		path:      path,
		sessionID: sessionID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the log file path.
func (w *Writer) Path() string { return w.path }

// SessionID returns the session identifier stamped on entries.
func (w *Writer) SessionID() string { return w.sessionID }

func (w *Writer) openLocked() error {
	if w.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create log folder: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = f
	return nil
}

func (w *Writer) closeLocked() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Open keeps the log file open across writes until Close.
func (w *Writer) Open() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.openLocked(); err != nil {
		logging.Warn("EventLog", "Cannot open %s: %v", w.path, err)
		return false
	}
	return true
}

// Close closes a file opened by Open.
func (w *Writer) Close() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.closeLocked(); err != nil {
		logging.Warn("EventLog", "Cannot close %s: %v", w.path, err)
		return false
	}
	return true
}

func encodeMessage(message any) json.RawMessage {
	data, err := json.Marshal(message)
	if err == nil {
		return data
	}
	data, _ = json.Marshal(serializationFailure{
		Message:      "Failed to serialize log message",
		ErrorType:    fmt.Sprintf("%T", err),
		ErrorMessage: err.Error(),
	})
	return data
}

// WriteMessage appends one entry whose payload is message. A payload that
// cannot be encoded is replaced by a description of the encoding failure.
// When the file is not held open by Open it is opened and closed around the
// write.
func (w *Writer) WriteMessage(message any) bool {
	entry := newEntry(w.now(), w.sessionID, encodeMessage(message))
	line, err := json.Marshal(entry)
	if err != nil {
		logging.Warn("EventLog", "Cannot encode log entry: %v", err)
		return false
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	opened := w.file == nil
	if err := w.openLocked(); err != nil {
		logging.Warn("EventLog", "Cannot open %s: %v", w.path, err)
		return false
	}

	ok := true
	if _, err := w.file.Write(line); err != nil {
		logging.Warn("EventLog", "Cannot write to %s: %v", w.path, err)
		ok = false
	} else if err := w.file.Sync(); err != nil {
		logging.Debug("EventLog", "Cannot flush %s: %v", w.path, err)
	}

	if opened {
		if err := w.closeLocked(); err != nil {
			logging.Warn("EventLog", "Cannot close %s: %v", w.path, err)
			ok = false
		}
	}
	return ok
}

// WriteText appends an entry whose payload is {"message": text}.
func (w *Writer) WriteText(text string) bool {
	return w.WriteMessage(TextMessage{Message: text})
}

// WriteTextf is WriteText with formatting.
func (w *Writer) WriteTextf(format string, args ...any) bool {
	return w.WriteText(fmt.Sprintf(format, args...))
}
