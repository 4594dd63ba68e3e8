//go:build !tinygo

package buzzer

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// PeriphDriver generates tones through periph.io's hardware PWM support.
type PeriphDriver struct {
	mu   sync.Mutex
	pins map[int]gpio.PinIO
}

// NewPeriphDriver initialises the periph host drivers.
func NewPeriphDriver() (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return &PeriphDriver{pins: make(map[int]gpio.PinIO)}, nil
}

// On starts a 50% duty tone on pin.
func (d *PeriphDriver) On(pin int, hz int) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	if err := p.PWM(gpio.DutyHalf, physic.Frequency(hz)*physic.Hertz); err != nil {
		return fmt.Errorf("pwm GPIO%d at %dHz: %w", pin, hz, err)
	}
	return nil
}

// Off stops PWM and drives pin low.
func (d *PeriphDriver) Off(pin int) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("drive GPIO%d low: %w", pin, err)
	}
	return nil
}

func (d *PeriphDriver) pin(n int) (gpio.PinIO, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pins[n]; ok {
		return p, nil
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, fmt.Errorf("unknown pin GPIO%d", n)
	}
	d.pins[n] = p
	return p, nil
}
