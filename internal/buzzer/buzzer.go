// Package buzzer drives the two piezo buzzers with a PWM square wave.
package buzzer

import (
	"errors"
	"fmt"
)

// AlarmToneHz is the tone both buzzers play while the alarm sounds.
const AlarmToneHz = 2000

// Default buzzer pins.
const (
	DefaultPin1 = 10
	DefaultPin2 = 21
)

// Driver issues tone commands to buzzer pins.
type Driver interface {
	// On starts a 50% duty square wave at hz on pin.
	On(pin int, hz int) error

	// Off stops the tone and drives pin low.
	Off(pin int) error
}

// Pair switches a set of buzzers together at one tone.
type Pair struct {
	drv  Driver
	pins []int
	hz   int
}

// NewPair creates a Pair playing hz on every pin.
func NewPair(drv Driver, hz int, pins ...int) *Pair {
	return &Pair{drv: drv, pins: pins, hz: hz}
}

// Set turns all buzzers on or off. Every pin is attempted even if one fails.
func (p *Pair) Set(on bool) error {
	var errs []error
	for _, pin := range p.pins {
		var err error
		if on {
			err = p.drv.On(pin, p.hz)
		} else {
			err = p.drv.Off(pin)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("buzzer pin %d: %w", pin, err))
		}
	}
	return errors.Join(errs...)
}
