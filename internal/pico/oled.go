//go:build rp2040 || rp2350

package pico

import (
	"fmt"
	"image"
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"

	"github.com/sweeney/alarm-panel/internal/display"
)

// OLEDAddress is the I2C address of the SSD1306 module.
const OLEDAddress = 0x3C

var (
	pixelOn  = color.RGBA{255, 255, 255, 255}
	pixelOff = color.RGBA{0, 0, 0, 255}
)

// OLED is a display.Sink over the TinyGo SSD1306 driver.
type OLED struct {
	setPixel func(x, y int16, c color.RGBA)
	show     func() error
}

// OpenOLED configures bus at 400 kHz on sda/scl and initialises the panel.
func OpenOLED(bus *machine.I2C, sda, scl machine.Pin) (*OLED, error) {
	err := bus.Configure(machine.I2CConfig{
		SDA:       sda,
		SCL:       scl,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		return nil, fmt.Errorf("configure i2c: %w", err)
	}
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Width:   display.Width,
		Height:  display.Height,
		Address: OLEDAddress,
	})
	dev.ClearDisplay()
	return &OLED{setPixel: dev.SetPixel, show: dev.Display}, nil
}

// Draw copies the r region of src into the controller's buffer and pushes
// the whole frame.
func (o *OLED) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(image.Rect(0, 0, display.Width, display.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := pixelOff
			if lit(src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y)) {
				c = pixelOn
			}
			o.setPixel(int16(x), int16(y), c)
		}
	}
	return o.show()
}

func lit(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r|g|b != 0
}
