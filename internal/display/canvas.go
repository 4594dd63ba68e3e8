package display

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Canvas is a Driver drawing into a 1-bit frame buffer.
type Canvas struct {
	img  *image1bit.VerticalLSB
	sink Sink
	face *basicfont.Face
}

// NewCanvas creates a blank canvas. A nil sink makes Flush a no-op.
func NewCanvas(sink Sink) *Canvas {
	return &Canvas{
		img:  image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height)),
		sink: sink,
		face: basicfont.Face7x13,
	}
}

// Image returns the frame buffer.
func (c *Canvas) Image() *image1bit.VerticalLSB {
	return c.img
}

// Clear switches every pixel off.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// DrawRect draws the outline of a w x h rectangle with its top-left corner at x,y.
func (c *Canvas) DrawRect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	x1, y1 := x+w-1, y+h-1
	c.DrawLine(x, y, x1, y)
	c.DrawLine(x, y1, x1, y1)
	c.DrawLine(x, y, x, y1)
	c.DrawLine(x1, y, x1, y1)
}

// DrawLine draws a straight line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, image1bit.On)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawString renders text with its top-left corner at x,y. The character
// cells are cleared first so shorter or blank text overwrites what was there.
func (c *Canvas) DrawString(text string, x, y int) {
	cell := c.TextBounds(text, x, y)
	for py := cell.Min.Y; py < cell.Max.Y; py++ {
		for px := cell.Min.X; px < cell.Max.X; px++ {
			c.set(px, py, image1bit.Off)
		}
	}

	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(image1bit.On),
		Face: c.face,
		Dot:  fixed.P(x, y+c.face.Ascent),
	}
	d.DrawString(text)
}

// TextBounds returns the cells DrawString covers for text at x,y.
func (c *Canvas) TextBounds(text string, x, y int) image.Rectangle {
	n := len([]rune(text))
	return image.Rect(x, y, x+n*c.face.Advance, y+c.face.Height).Intersect(c.img.Bounds())
}

// Flush sends the frame to the sink.
func (c *Canvas) Flush() error {
	if c.sink == nil {
		return nil
	}
	return c.sink.Draw(c.img.Bounds(), c.img, image.Point{})
}

// Lit reports whether the pixel at x,y is on.
func (c *Canvas) Lit(x, y int) bool {
	return c.img.BitAt(x, y) == image1bit.On
}

func (c *Canvas) set(x, y int, b image1bit.Bit) {
	if !image.Pt(x, y).In(c.img.Rect) {
		return
	}
	c.img.SetBit(x, y, b)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
