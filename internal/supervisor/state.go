// Package supervisor manages the lifecycle of a color-temperature daemon.
package supervisor

// State represents the current lifecycle state of the supervised daemon.
type State int

const (
	// StateUninitialized is the initial state. No process exists.
	StateUninitialized State = iota

	// StateRunning indicates the daemon is showing the current color.
	StateRunning

	// StatePaused indicates the daemon is showing the pause color.
	StatePaused

	// StateTerminated indicates the daemon has been stopped.
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// IsAlive returns true if a daemon process exists in this state.
func (s State) IsAlive() bool {
	return s == StateRunning || s == StatePaused
}

// IsTerminal returns true if the state is a terminal state (terminated).
func (s State) IsTerminal() bool {
	return s == StateTerminated
}

// Op identifies one of the lifecycle operations gated by the state machine.
type Op int

const (
	OpStart Op = iota
	OpStop
	OpPreview
	OpTogglePause
	OpSetSetting
)

// String returns the operation as used in error messages.
func (o Op) String() string {
	switch o {
	case OpStart:
		return "start"
	case OpStop:
		return "stop"
	case OpPreview:
		return "preview"
	case OpTogglePause:
		return "pause/unpause"
	case OpSetSetting:
		return "alter settings"
	default:
		return "unknown"
	}
}

// Setting names a startup parameter that can be changed through SetSetting.
type Setting string

const (
	SettingLatitude   Setting = "latitude"
	SettingLongitude  Setting = "longitude"
	SettingZipcode    Setting = "zipcode"
	SettingColor      Setting = "color"
	SettingPauseColor Setting = "pause_color"
)
