package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"batchrvt/pkg/logging"
)

// State is the lifecycle state of a supervised process.
type State int32

const (
	NotStarted State = iota
	Running
	Exited
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case Exited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// ErrAlreadyStarted is returned when Start is called twice on one Session.
var ErrAlreadyStarted = errors.New("session already started")

// LaunchError reports that the child process could not be created.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

type stream struct {
	reader  *LineReader
	file    *os.File
	pending *PendingRead
	ended   bool
}

func (s *stream) poll() []string {
	if s.ended {
		return nil
	}
	lines, next := PollAvailableLines(s.reader, s.pending)
	s.pending = next
	if next == nil {
		s.ended = true
	}
	return lines
}

// Session supervises exactly one child process. Start, the Poll methods and
// Close are meant to be called from a single goroutine; IsExited, State and
// ExitCode may be called from anywhere.
type Session struct {
	cmd    *exec.Cmd
	stdout *stream
	stderr *stream

	state    atomic.Int32
	exitCode atomic.Int64
	waitDone chan struct{}
	waitErr  error

	closeOnce sync.Once
}

// NewSession returns a session in the NotStarted state.
func NewSession() *Session {
	s := &Session{waitDone: make(chan struct{})}
	s.exitCode.Store(-1)
	return s
}

// Start launches executable with args in workingDirectory. stdout and stderr
// are redirected to pipes owned by the session; stdin is not redirected.
func (s *Session) Start(executable string, args []string, workingDirectory string) error {
	if State(s.state.Load()) != NotStarted {
		return ErrAlreadyStarted
	}

	path, err := exec.LookPath(executable)
	if err != nil {
		return &LaunchError{Executable: executable, Err: err}
	}
	// cmd.Dir would otherwise change what a relative path refers to.
	if path, err = filepath.Abs(path); err != nil {
		return &LaunchError{Executable: executable, Err: err}
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return &LaunchError{Executable: executable, Err: err}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return &LaunchError{Executable: executable, Err: err}
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = workingDirectory
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	configureProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		for _, f := range []*os.File{stdoutR, stdoutW, stderrR, stderrW} {
			f.Close()
		}
		return &LaunchError{Executable: executable, Err: err}
	}

	// The child holds its own copies of the write ends; closing ours lets the
	// readers see end-of-stream once the child and its descendants exit.
	stdoutW.Close()
	stderrW.Close()

	s.cmd = cmd
	s.stdout = &stream{reader: NewLineReader("stdout", stdoutR), file: stdoutR}
	s.stderr = &stream{reader: NewLineReader("stderr", stderrR), file: stderrR}
	s.state.Store(int32(Running))

	logging.Info("Supervisor", "Started %s (pid %d)", path, cmd.Process.Pid)

	go s.wait()
	return nil
}

func (s *Session) wait() {
	err := s.cmd.Wait()
	code := -1
	if s.cmd.ProcessState != nil {
		code = s.cmd.ProcessState.ExitCode()
	}
	s.waitErr = err
	s.exitCode.Store(int64(code))
	s.state.Store(int32(Exited))
	close(s.waitDone)
	logging.Info("Supervisor", "Process %d exited with code %d", s.cmd.Process.Pid, code)
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// IsExited reports whether the process has exited. Output may still be
// buffered after exit; keep polling until Drained.
func (s *Session) IsExited() bool { return s.State() == Exited }

// ExitCode returns the exit code, or -1 while running or if it is unknown.
func (s *Session) ExitCode() int { return int(s.exitCode.Load()) }

// Pid returns the process id, or 0 before Start.
func (s *Session) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Exited is closed once the process has exited.
func (s *Session) Exited() <-chan struct{} { return s.waitDone }

// WaitError returns the error reported when the process was reaped. It is
// only meaningful after IsExited.
func (s *Session) WaitError() error {
	if !s.IsExited() {
		return nil
	}
	return s.waitErr
}

// PollStdout returns the stdout lines available right now.
func (s *Session) PollStdout() []string {
	if s.stdout == nil {
		return nil
	}
	return s.stdout.poll()
}

// PollStderr returns the stderr lines available right now.
func (s *Session) PollStderr() []string {
	if s.stderr == nil {
		return nil
	}
	return s.stderr.poll()
}

// Drained reports whether both streams have reached their end.
func (s *Session) Drained() bool {
	if s.stdout == nil || s.stderr == nil {
		return false
	}
	return s.stdout.ended && s.stderr.ended
}

// Terminate force-kills the process. It is best effort: an error is returned
// for the caller to report, and the session stays usable for draining.
func (s *Session) Terminate() error {
	if s.State() != Running {
		return nil
	}
	if err := killProcess(s.cmd.Process); err != nil {
		if s.IsExited() {
			return nil
		}
		logging.Warn("Supervisor", "Failed to terminate process %d: %v", s.cmd.Process.Pid, err)
		return fmt.Errorf("failed to terminate process %d: %w", s.cmd.Process.Pid, err)
	}
	logging.Info("Supervisor", "Terminated process %d", s.cmd.Process.Pid)
	return nil
}

// Close releases the read ends of both pipes. Any read still in flight ends
// and is reported as end of stream by the next poll.
func (s *Session) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		for _, st := range []*stream{s.stdout, s.stderr} {
			if st == nil {
				continue
			}
			if err := st.file.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
