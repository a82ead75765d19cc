package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DesktopFileName is the autostart entry written for the application.
const DesktopFileName = AppDirName + ".desktop"

// Autostart manages the XDG autostart entry that launches the application at
// login.
type Autostart struct {
	// Dir is the autostart directory, normally $XDG_CONFIG_HOME/autostart.
	Dir string

	// Exec is the command line the entry launches.
	Exec string
}

// DefaultAutostart returns an Autostart for the current user and executable.
func DefaultAutostart() (*Autostart, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &Autostart{
		Dir:  filepath.Join(dir, "autostart"),
		Exec: exe + " -ui tray",
	}, nil
}

// Path returns the full path of the desktop entry.
func (a *Autostart) Path() string {
	return filepath.Join(a.Dir, DesktopFileName)
}

// Enabled reports whether the desktop entry exists.
func (a *Autostart) Enabled() bool {
	_, err := os.Stat(a.Path())
	return err == nil
}

// Set writes or removes the desktop entry.
func (a *Autostart) Set(enabled bool) error {
	if enabled {
		return a.enable()
	}
	return a.disable()
}

func (a *Autostart) enable() error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", a.Dir, err)
	}
	if err := os.WriteFile(a.Path(), []byte(a.desktopEntry()), 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", a.Path(), err)
	}
	return nil
}

func (a *Autostart) disable() error {
	err := os.Remove(a.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", a.Path(), err)
	}
	return nil
}

func (a *Autostart) desktopEntry() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=go-fluxgui\n")
	b.WriteString("Comment=Screen color temperature indicator\n")
	b.WriteString("Exec=" + a.Exec + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}
