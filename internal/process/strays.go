package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	psprocess "github.com/shirou/gopsutil/v3/process"
)

// maxCommLen is the kernel's limit on process names in /proc/<pid>/stat.
const maxCommLen = 15

// KillStrays force-kills every process named like binary that belongs to the
// current user, except daemons tracked by this launcher. It returns how many
// processes were killed.
func (l *Launcher) KillStrays(ctx context.Context, binary string) (int, error) {
	username, err := l.currentUser()
	if err != nil {
		return 0, fmt.Errorf("resolve current user: %w", err)
	}

	procs, err := psprocess.ProcessesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	tracked := make(map[int32]bool)
	for _, h := range l.handles.Items() {
		tracked[int32(h.PID)] = true
	}
	self := int32(os.Getpid())
	want := commName(binary)

	var errs []error
	killed := 0
	for _, p := range procs {
		if p.Pid == self || tracked[p.Pid] {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || name != want {
			continue
		}
		owner, err := p.UsernameWithContext(ctx)
		if err != nil || owner != username {
			continue
		}

		if err := p.KillWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill stray pid %d: %w", p.Pid, err))
			continue
		}
		killed++
		l.logger.Info("stray_daemon_killed", "binary", want, "pid", p.Pid, "user", username)
	}

	return killed, errors.Join(errs...)
}

// commName returns the name the kernel reports for binary.
func commName(binary string) string {
	name := filepath.Base(binary)
	if len(name) > maxCommLen {
		name = name[:maxCommLen]
	}
	return name
}

func currentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
