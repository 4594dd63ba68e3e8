package logic

import (
	"errors"
	"fmt"
	"time"
)

// ConfirmPollInterval is the button sampling interval while waiting for confirmation.
const ConfirmPollInterval = 10 * time.Millisecond

// Status line texts.
const (
	TextWaiting = "AGUARDANDO"
	TextBlank   = "          "
)

// Machine owns the alarm state. It is not safe for concurrent use: every
// call must come from the single control goroutine.
type Machine struct {
	mode   ArmMode
	out    Outputs
	button Button
	now    func() time.Time
	sleep  func(time.Duration)

	state  State
	counts Counts
	events []Event
}

// NewMachine creates a Machine in the IDLE state. Outputs are not touched
// until the first transition.
func NewMachine(mode ArmMode, out Outputs, button Button, now func() time.Time, sleep func(time.Duration)) *Machine {
	if mode == "" {
		mode = ArmBlocking
	}
	return &Machine{
		mode:   mode,
		out:    out,
		button: button,
		now:    now,
		sleep:  sleep,
		state:  StateIdle,
	}
}

// State returns the current alarm state.
func (m *Machine) State() State {
	return m.state
}

// Mode returns the configured arm mode.
func (m *Machine) Mode() ArmMode {
	return m.mode
}

// Counts returns a copy of the transition counters.
func (m *Machine) Counts() Counts {
	return m.counts
}

// Events returns and clears the queued transition events.
func (m *Machine) Events() []Event {
	events := m.events
	m.events = nil
	return events
}

// Arm requests the alarm become active. It is a no-op when the alarm is
// already ACTIVE or already waiting for confirmation. Otherwise the LEDs
// show "ready to arm" and the machine waits for the button: in blocking
// mode inside this call, in deferred mode via PollConfirm.
func (m *Machine) Arm() error {
	if m.state != StateIdle {
		return nil
	}

	var errs []error
	if err := m.out.SetLEDs(false, true); err != nil {
		errs = append(errs, fmt.Errorf("set leds: %w", err))
	}
	if err := m.out.StatusLine(TextWaiting); err != nil {
		errs = append(errs, fmt.Errorf("status line: %w", err))
	}
	m.counts.Arms++
	m.transition(EventArming, StateArmPending)

	if m.mode != ArmBlocking {
		return errors.Join(errs...)
	}

	for {
		pressed, err := m.button.Pressed()
		if err != nil {
			errs = append(errs, fmt.Errorf("read button: %w", err))
			return errors.Join(errs...)
		}
		if pressed {
			m.confirm()
			return errors.Join(errs...)
		}
		m.sleep(ConfirmPollInterval)
	}
}

// PollConfirm samples the button once while ARM_PENDING and completes the
// transition to ACTIVE when it is pressed. Returns whether the alarm was
// activated by this call.
func (m *Machine) PollConfirm() (bool, error) {
	if m.state != StateArmPending {
		return false, nil
	}
	pressed, err := m.button.Pressed()
	if err != nil {
		return false, fmt.Errorf("read button: %w", err)
	}
	if !pressed {
		return false, nil
	}
	m.confirm()
	return true, nil
}

// Disarm deactivates the alarm from any state and resets the outputs.
// Calling it repeatedly is harmless.
func (m *Machine) Disarm() error {
	m.counts.Disarms++
	if m.state != StateIdle {
		m.transition(EventDisarmed, StateIdle)
	}

	var errs []error
	if err := m.out.SetBuzzers(false); err != nil {
		errs = append(errs, fmt.Errorf("buzzers off: %w", err))
	}
	if err := m.out.SetLEDs(true, false); err != nil {
		errs = append(errs, fmt.Errorf("set leds: %w", err))
	}
	if err := m.out.StatusLine(TextBlank); err != nil {
		errs = append(errs, fmt.Errorf("status line: %w", err))
	}
	return errors.Join(errs...)
}

func (m *Machine) confirm() {
	m.counts.Confirms++
	m.transition(EventArmed, StateActive)
}

func (m *Machine) transition(typ EventType, to State) {
	m.events = append(m.events, Event{
		Timestamp: m.now(),
		Type:      typ,
		From:      m.state,
		To:        to,
	})
	m.state = to
}
