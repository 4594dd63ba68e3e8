//go:build rp2040 || rp2350

package pico

import (
	"fmt"
	"machine"
)

// LEDs drives the red and green LEDs directly from GPIO pins.
type LEDs struct {
	red, green machine.Pin
}

// NewLEDs configures red and green as outputs, both off.
func NewLEDs(red, green machine.Pin) *LEDs {
	red.Configure(machine.PinConfig{Mode: machine.PinOutput})
	green.Configure(machine.PinConfig{Mode: machine.PinOutput})
	red.Low()
	green.Low()
	return &LEDs{red: red, green: green}
}

// Set switches both LEDs.
func (l *LEDs) Set(red, green bool) error {
	l.red.Set(red)
	l.green.Set(green)
	return nil
}

// Button is an active-low push button with the internal pull-up enabled.
type Button struct {
	pin machine.Pin
}

// NewButton configures pin as a pulled-up input.
func NewButton(pin machine.Pin) *Button {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &Button{pin: pin}
}

// Pressed reports whether the button currently pulls the line low.
func (b *Button) Pressed() (bool, error) {
	return !b.pin.Get(), nil
}

// OnFalling configures pin as a pulled-up input and calls fn from
// interrupt context on every falling edge. fn must not block.
func OnFalling(pin machine.Pin, fn func()) error {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	if err := pin.SetInterrupt(machine.PinFalling, func(machine.Pin) { fn() }); err != nil {
		return fmt.Errorf("interrupt on pin %d: %w", pin, err)
	}
	return nil
}
