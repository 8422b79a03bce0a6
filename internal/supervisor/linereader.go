package supervisor

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"batchrvt/pkg/logging"
)

const readBufferSize = 64 * 1024

// LineReader reads lines from one redirected stream. At most one read is in
// flight at any time; the in-flight read is represented by a PendingRead.
type LineReader struct {
	name string
	r    *bufio.Reader
	// ended is only touched by the goroutine owning the current read.
	ended bool
}

// NewLineReader wraps r. name is used in diagnostics only.
func NewLineReader(name string, r io.Reader) *LineReader {
	return &LineReader{
		name: name,
		r:    bufio.NewReaderSize(r, readBufferSize),
	}
}

// Name returns the stream name.
func (lr *LineReader) Name() string { return lr.name }

// PendingRead is a resumable handle on one "read next line" operation. It
// must be handed back to the next PollAvailableLines call exactly once; it is
// never restarted or dropped while incomplete.
type PendingRead struct {
	done chan struct{}
	line string
	ok   bool
	err  error
}

// Completed reports whether the read has finished, without blocking.
func (p *PendingRead) Completed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done is closed when the read finishes.
func (p *PendingRead) Done() <-chan struct{} { return p.done }

// startRead begins the next read. It completes synchronously when a whole
// line is already buffered or the stream has ended, and otherwise reads on a
// new goroutine.
func (lr *LineReader) startRead() *PendingRead {
	p := &PendingRead{done: make(chan struct{})}
	if lr.ended {
		close(p.done)
		return p
	}
	if lr.hasBufferedLine() {
		lr.readInto(p)
		return p
	}
	go lr.readInto(p)
	return p
}

func (lr *LineReader) hasBufferedLine() bool {
	n := lr.r.Buffered()
	if n == 0 {
		return false
	}
	buffered, err := lr.r.Peek(n)
	if err != nil {
		return false
	}
	return bytes.IndexByte(buffered, '\n') >= 0
}

func (lr *LineReader) readInto(p *PendingRead) {
	defer close(p.done)

	s, err := lr.r.ReadString('\n')
	if err != nil {
		lr.ended = true
		if !isEndOfStream(err) {
			p.err = err
		}
		if s == "" {
			return
		}
	}
	p.line = strings.TrimRight(s, "\r\n")
	p.ok = true
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

// PollAvailableLines collects every line whose read has already completed,
// without blocking. pending is the continuation returned by the previous
// call, or nil on the first call.
//
// Reads are chained: each completed line immediately starts the next read,
// and collection stops at the first read that has not completed yet. That read
// is returned as the new continuation. A nil continuation means the stream has
// ended; a read that faulted counts as the end of the stream.
func PollAvailableLines(lr *LineReader, pending *PendingRead) ([]string, *PendingRead) {
	var lines []string

	op := pending
	if op == nil {
		op = lr.startRead()
	}
	for op.Completed() {
		if op.err != nil {
			logging.Debug("Supervisor", "Read from %s faulted, treating as end of stream: %v", lr.name, op.err)
		}
		if !op.ok {
			return lines, nil
		}
		lines = append(lines, op.line)
		op = lr.startRead()
	}
	return lines, op
}
