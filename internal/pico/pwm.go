//go:build rp2040 || rp2350

package pico

import (
	"fmt"
	"machine"
)

// pwmSlice is the subset of TinyGo's unexported PWM group type we use.
type pwmSlice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
}

// PWMDriver plays tones on RP2040 hardware PWM slices. It satisfies
// buzzer.Driver.
type PWMDriver struct {
	configured map[uint8]bool
}

// NewPWMDriver creates a driver with no slice configured yet.
func NewPWMDriver() *PWMDriver {
	return &PWMDriver{configured: make(map[uint8]bool)}
}

// On starts a 50% duty square wave at hz on pin.
func (d *PWMDriver) On(pin int, hz int) error {
	if hz <= 0 {
		return fmt.Errorf("invalid frequency %d", hz)
	}
	period := uint64(1e9 / hz)
	slice, num := sliceFor(pin)
	if !d.configured[num] {
		if err := slice.Configure(machine.PWMConfig{Period: period}); err != nil {
			return fmt.Errorf("configure pwm slice %d: %w", num, err)
		}
		d.configured[num] = true
	} else if err := slice.SetPeriod(period); err != nil {
		return fmt.Errorf("set period on slice %d: %w", num, err)
	}
	ch, err := slice.Channel(machine.Pin(pin))
	if err != nil {
		return fmt.Errorf("pwm channel for pin %d: %w", pin, err)
	}
	slice.Set(ch, slice.Top()/2)
	return nil
}

// Off sets the pin's duty to zero, holding the output low.
func (d *PWMDriver) Off(pin int) error {
	slice, num := sliceFor(pin)
	if !d.configured[num] {
		p := machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
		return nil
	}
	ch, err := slice.Channel(machine.Pin(pin))
	if err != nil {
		return fmt.Errorf("pwm channel for pin %d: %w", pin, err)
	}
	slice.Set(ch, 0)
	return nil
}

// sliceFor maps a GPIO number to its PWM slice: (n >> 1) mod 8.
func sliceFor(pin int) (pwmSlice, uint8) {
	num := uint8((pin >> 1) & 0x7)
	switch num {
	case 1:
		return machine.PWM1, num
	case 2:
		return machine.PWM2, num
	case 3:
		return machine.PWM3, num
	case 4:
		return machine.PWM4, num
	case 5:
		return machine.PWM5, num
	case 6:
		return machine.PWM6, num
	case 7:
		return machine.PWM7, num
	}
	return machine.PWM0, num
}
