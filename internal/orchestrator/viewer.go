package orchestrator

import (
	"fmt"
	"io"
	"sync"

	"batchrvt/internal/supervisor"
)

// Viewer receives the lines of a running session.
type Viewer interface {
	AppendLine(stream supervisor.Stream, text string)
}

// ViewerFunc adapts a function to the Viewer interface.
type ViewerFunc func(stream supervisor.Stream, text string)

func (f ViewerFunc) AppendLine(stream supervisor.Stream, text string) { f(stream, text) }

// WriterViewer writes every line to an io.Writer.
type WriterViewer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterViewer returns a viewer writing to out.
func NewWriterViewer(out io.Writer) *WriterViewer {
	return &WriterViewer{out: out}
}

func (v *WriterViewer) AppendLine(_ supervisor.Stream, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, text)
}

// discardViewer drops every line.
type discardViewer struct{}

func (discardViewer) AppendLine(supervisor.Stream, string) {}
