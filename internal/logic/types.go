// Package logic contains the alarm state machine and the active-alarm render pattern.
// This package has NO hardware, network or OS dependencies.
// Outputs, the confirmation button, the clock and sleeping are all injected.
package logic

import "time"

// State represents the alarm state.
type State string

const (
	StateIdle       State = "IDLE"
	StateArmPending State = "ARM_PENDING"
	StateActive     State = "ACTIVE"
)

// ArmMode selects how Arm waits for the physical confirmation.
type ArmMode string

const (
	// ArmDeferred returns from Arm immediately; PollConfirm completes the transition.
	ArmDeferred ArmMode = "deferred"
	// ArmBlocking samples the button inside Arm until it is pressed.
	ArmBlocking ArmMode = "blocking"
)

// ParseArmMode validates an arm mode name.
func ParseArmMode(s string) (ArmMode, bool) {
	switch ArmMode(s) {
	case ArmDeferred, ArmBlocking:
		return ArmMode(s), true
	}
	return "", false
}

// EventType represents a state transition event.
type EventType string

const (
	EventArming   EventType = "ARMING"
	EventArmed    EventType = "ARMED"
	EventDisarmed EventType = "DISARMED"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	From      State
	To        State
}

// Counts tracks transition requests since startup.
type Counts struct {
	Arms     int // Arm calls that left IDLE
	Confirms int // button confirmations (ARM_PENDING -> ACTIVE)
	Disarms  int // every Disarm call
}

// Outputs is the set of device outputs the state machine drives.
type Outputs interface {
	// SetLEDs drives the red and green status LEDs.
	SetLEDs(red, green bool) error

	// SetBuzzers switches both buzzers on (alarm tone) or off.
	SetBuzzers(on bool) error

	// StatusLine renders text on the display's status row.
	StatusLine(text string) error
}

// Button reports whether the confirmation button is pressed.
type Button interface {
	Pressed() (bool, error)
}
