// Package panel ties the alarm state machine to the device outputs and the
// network service, and runs one iteration of the main loop per Tick.
package panel

import (
	"fmt"

	"github.com/sweeney/alarm-panel/internal/buzzer"
	"github.com/sweeney/alarm-panel/internal/display"
)

// Banner and status row layout.
const (
	BannerTitle = "SEGURANCA"

	StatusX = 26
	StatusY = 36
)

// LEDs drives the red/green status LED pair.
type LEDs interface {
	Set(red, green bool) error
}

// Outputs adapts the physical outputs to logic.Outputs.
type Outputs struct {
	leds    LEDs
	buzzers *buzzer.Pair
	disp    display.Driver
}

// NewOutputs creates Outputs over the given drivers.
func NewOutputs(leds LEDs, buzzers *buzzer.Pair, disp display.Driver) *Outputs {
	return &Outputs{leds: leds, buzzers: buzzers, disp: disp}
}

func (o *Outputs) SetLEDs(red, green bool) error {
	return o.leds.Set(red, green)
}

func (o *Outputs) SetBuzzers(on bool) error {
	return o.buzzers.Set(on)
}

// StatusLine draws text on the status row and pushes the frame.
func (o *Outputs) StatusLine(text string) error {
	o.disp.DrawString(text, StatusX, StatusY)
	if err := o.disp.Flush(); err != nil {
		return fmt.Errorf("flush display: %w", err)
	}
	return nil
}

// DrawBanner draws the static frame: border, title and separator.
func (o *Outputs) DrawBanner() error {
	o.disp.Clear()
	o.disp.DrawRect(3, 3, 122, 60)
	o.disp.DrawString(BannerTitle, 29, 4)
	o.disp.DrawLine(3, 19, 123, 19)
	if err := o.disp.Flush(); err != nil {
		return fmt.Errorf("draw banner: %w", err)
	}
	return nil
}
