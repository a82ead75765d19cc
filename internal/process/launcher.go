package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/creack/pty"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// ErrNoInput is returned by Send when the daemon was not launched on a pty.
var ErrNoInput = errors.New("daemon has no input channel")

// errStillRunning is the retry signal used while waiting for a killed process.
var errStillRunning = errors.New("process still running")

// LauncherConfig holds configuration for creating a Launcher.
type LauncherConfig struct {
	Logger *slog.Logger

	// UsePTY launches daemons on a pseudo-terminal. Required for live color
	// commands; also keeps daemons line-buffering their output.
	UsePTY bool

	// KillTimeout bounds how long Kill waits for the process to disappear.
	KillTimeout time.Duration

	// Output consumes the combined stdout/stderr of a launched daemon.
	// It runs in its own goroutine. If nil, output is discarded.
	Output func(id string, r io.Reader)

	// OnExit is called when a launched daemon exits for any reason.
	OnExit func(id string, pid int, exitCode int, uptime time.Duration)
}

// Handle describes one launched daemon process.
type Handle struct {
	ID        string
	PID       int
	Binary    string
	Args      []string
	StartTime time.Time

	cmd  *exec.Cmd
	tty  *os.File
	done chan struct{}

	mu       sync.Mutex
	exitCode int
}

// Done is closed once the process has been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Exited reports whether the process has been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code; only meaningful after Exited.
func (h *Handle) ExitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Launcher starts daemon processes and keeps a registry of live handles keyed by
// an opaque identifier.
type Launcher struct {
	config  LauncherConfig
	logger  *slog.Logger
	handles cmap.ConcurrentMap[string, *Handle]

	// currentUser is swappable for tests.
	currentUser func() (string, error)
}

// NewLauncher creates a new Launcher with the given configuration.
func NewLauncher(cfg LauncherConfig) *Launcher {
	if cfg.KillTimeout <= 0 {
		cfg.KillTimeout = 3 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Launcher{
		config:      cfg,
		logger:      logger,
		handles:     cmap.New[*Handle](),
		currentUser: currentUsername,
	}
}

// Launch starts binary with args and returns the handle identifier.
// The returned error wraps exec.ErrNotFound when the binary is not on PATH.
func (l *Launcher) Launch(ctx context.Context, binary string, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", binary, err)
	}

	// Not CommandContext: the daemon outlives the request that started it.
	cmd := exec.Command(path, args...) //nolint:gosec // binary comes from local config

	h := &Handle{
		ID:     uuid.NewString(),
		Binary: binary,
		Args:   append([]string(nil), args...),
		cmd:    cmd,
		done:   make(chan struct{}),
	}

	var output io.Reader
	if l.config.UsePTY {
		// pty.Start puts the child in its own session, which also gives it its
		// own process group.
		tty, err := pty.Start(cmd)
		if err != nil {
			return "", fmt.Errorf("start %s on pty: %w", binary, err)
		}
		h.tty = tty
		output = tty
	} else {
		r, w, err := os.Pipe()
		if err != nil {
			return "", fmt.Errorf("output pipe: %w", err)
		}
		cmd.Stdout = w
		cmd.Stderr = w
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if err := cmd.Start(); err != nil {
			r.Close()
			w.Close()
			return "", fmt.Errorf("start %s: %w", binary, err)
		}
		// Close parent's write-end so the reader sees EOF when the daemon exits
		w.Close()
		output = r
	}

	h.PID = cmd.Process.Pid
	h.StartTime = time.Now()
	l.handles.Set(h.ID, h)

	l.logger.Info("daemon_launched",
		"handle", h.ID,
		"binary", binary,
		"pid", h.PID,
		"args", args,
		"pty", l.config.UsePTY,
	)

	go l.drain(h, output)
	go l.reap(h)

	return h.ID, nil
}

// drain forwards daemon output until EOF.
func (l *Launcher) drain(h *Handle, r io.Reader) {
	if l.config.Output != nil {
		l.config.Output(h.ID, r)
	} else {
		_, _ = io.Copy(io.Discard, r)
	}
	if c, ok := r.(io.Closer); ok && h.tty == nil {
		c.Close()
	}
}

// reap waits for the process to exit and removes it from the registry.
func (l *Launcher) reap(h *Handle) {
	waitErr := h.cmd.Wait()
	uptime := time.Since(h.StartTime)
	code := extractExitCode(waitErr)

	h.mu.Lock()
	h.exitCode = code
	h.mu.Unlock()

	if h.tty != nil {
		h.tty.Close()
	}
	l.handles.Remove(h.ID)
	close(h.done)

	l.logger.Info("daemon_exited",
		"handle", h.ID,
		"pid", h.PID,
		"exit_code", code,
		"uptime", uptime.String(),
	)

	if l.config.OnExit != nil {
		l.config.OnExit(h.ID, h.PID, code, uptime)
	}
}

// Send writes one line to the daemon's terminal.
func (l *Launcher) Send(id, line string) error {
	h, ok := l.handles.Get(id)
	if !ok {
		return fmt.Errorf("send to %s: unknown handle", id)
	}
	if h.tty == nil {
		return ErrNoInput
	}
	if _, err := io.WriteString(h.tty, line+"\n"); err != nil {
		return fmt.Errorf("send to pid %d: %w", h.PID, err)
	}
	l.logger.Debug("daemon_command_sent", "handle", id, "pid", h.PID, "line", line)
	return nil
}

// Kill force-kills the daemon's process group and waits until it is reaped.
// A handle that is no longer registered has already exited and is not an error.
func (l *Launcher) Kill(ctx context.Context, id string) error {
	h, ok := l.handles.Get(id)
	if !ok {
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = l.config.KillTimeout

	op := func() error {
		if h.Exited() {
			return nil
		}
		if err := signalGroup(h.PID, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
			return backoff.Permanent(fmt.Errorf("kill pid %d: %w", h.PID, err))
		}
		select {
		case <-h.done:
			return nil
		case <-time.After(5 * time.Millisecond):
			return errStillRunning
		}
	}

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		l.logger.Warn("daemon_kill_failed", "handle", id, "pid", h.PID, "error", err)
		return err
	}

	l.logger.Info("daemon_killed", "handle", id, "pid", h.PID)
	return nil
}

// Handle returns the registered handle for id.
func (l *Launcher) Handle(id string) (*Handle, bool) {
	return l.handles.Get(id)
}

// Count returns the number of live daemons launched by this launcher.
func (l *Launcher) Count() int {
	return l.handles.Count()
}

// signalGroup signals the process group, falling back to the process itself.
func signalGroup(pid int, sig syscall.Signal) error {
	if pgid, err := syscall.Getpgid(pid); err == nil && pgid == pid {
		return syscall.Kill(-pgid, sig)
	}
	return syscall.Kill(pid, sig)
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	// Unknown error, assume exit code 1
	return 1
}
