// Package display renders the panel's bitmap display.
//
// Drawing happens on an in-memory 1-bit frame; Flush pushes the frame to
// the physical device through a Sink.
package display

import "image"

// Frame dimensions of the SSD1306 module.
const (
	Width  = 128
	Height = 64
)

// Driver is the drawing surface used by the panel.
type Driver interface {
	Clear()
	DrawRect(x, y, w, h int)
	DrawString(text string, x, y int)
	DrawLine(x0, y0, x1, y1 int)
	Flush() error
}

// Sink receives a rendered frame. periph.io's ssd1306.Dev satisfies it.
type Sink interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}
