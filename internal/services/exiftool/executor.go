package exiftool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"chronofix/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr string, err error)
}

// commandExecutor runs the real binary in its own process group so a hung
// invocation can be killed together with any children it spawned.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, string, error) {
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		cause := ctx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			return stdout.String(), stderr.String(),
				services.Wrap(services.ErrTimeout, "exiftool", "run", binary+" exceeded deadline", cause)
		}
		// Operator abort, not a hung tool. The timeout marker would make
		// retry and problem-file logic fire on a plain interrupt.
		return stdout.String(), stderr.String(), cause
	case err := <-done:
		return stdout.String(), stderr.String(), err
	}
}

// killProcessGroup sends SIGKILL to the whole process group. Asking nicely
// is pointless here: a probe that has hung on a corrupt file ignores
// SIGTERM, and the pipeline must not block on it.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if pgid, err := unix.Getpgid(cmd.Process.Pid); err == nil {
		_ = unix.Kill(-pgid, unix.SIGKILL)
		return
	}
	_ = cmd.Process.Kill()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
