package engine

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// TaskActions are the operations an operator may apply to a task.
type TaskActions interface {
	Signal(pid int, sig syscall.Signal) error
	Renice(pid, nice int) error
}

// SystemActions acts on real processes.
type SystemActions struct{}

func (SystemActions) Signal(pid int, sig syscall.Signal) error {
	return unix.Kill(pid, sig)
}

func (SystemActions) Renice(pid, nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, nice)
}

// ParseSignal accepts a signal number or a name with or without the SIG
// prefix. Empty input means SIGTERM.
func ParseSignal(s string) (syscall.Signal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return unix.SIGTERM, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 || n > 64 {
			return 0, fmt.Errorf("invalid signal %d", n)
		}
		return syscall.Signal(n), nil
	}
	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("invalid signal %q", s)
}

// SignalName returns the SIGxxx name of sig.
func SignalName(sig syscall.Signal) string {
	if n := unix.SignalName(sig); n != "" {
		return n
	}
	return strconv.Itoa(int(sig))
}
