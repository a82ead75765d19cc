package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState matches every *StateError via errors.Is.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrBusy is returned when an operation is issued while another one,
	// including a preview hold or shutdown settle window, is still in flight.
	ErrBusy = errors.New("another operation is in progress")

	// ErrUnknownSetting is returned by SetSetting for unrecognized keys.
	ErrUnknownSetting = errors.New("unknown setting")
)

// StateError reports an operation that is not valid in the current state.
// It has no side effects and indicates a sequencing bug in the caller.
type StateError struct {
	Op    Op
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("daemon cannot %s in its current state (%s)", e.Op, e.State)
}

// Is makes errors.Is(err, ErrInvalidState) true.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ConfigurationError reports missing startup parameters. It is returned before
// any process is spawned.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DaemonNotFoundError reports that the daemon executable is not installed.
type DaemonNotFoundError struct {
	Binary string
	Err    error
}

func (e *DaemonNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: please install %s in the PATH", e.Binary, e.Binary)
}

func (e *DaemonNotFoundError) Unwrap() error {
	return e.Err
}
