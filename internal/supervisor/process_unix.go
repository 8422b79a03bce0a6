//go:build !windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

// configureProcAttr puts the child in its own process group so Terminate can
// reach everything it spawned.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcess kills the process group led by p, falling back to p alone.
func killProcess(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		return p.Kill()
	}
	return nil
}
