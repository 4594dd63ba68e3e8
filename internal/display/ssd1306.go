//go:build !tinygo

package display

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// SSD1306 is a Sink for an SSD1306 OLED on an I2C bus (address 0x3C).
type SSD1306 struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// OpenSSD1306 opens the named I2C bus ("" for the first one) and
// initialises a 128x64 display on it.
func OpenSSD1306(busName string) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	opts := ssd1306.DefaultOpts
	opts.W, opts.H = Width, Height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}
	return &SSD1306{bus: bus, dev: dev}, nil
}

// Draw pushes a frame to the display.
func (s *SSD1306) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	return s.dev.Draw(r, src, sp)
}

// Close blanks the display and releases the bus.
func (s *SSD1306) Close() error {
	var errs []error
	if err := s.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt display: %w", err))
	}
	if err := s.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
