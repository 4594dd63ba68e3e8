package display

import (
	"image"
)

// FakeDriver records drawing commands for test assertions.
type FakeDriver struct {
	// Strings holds the last text drawn at each position.
	Strings map[image.Point]string

	// Ops lists every call in order, e.g. "clear", "string ATIVADO.  ".
	Ops []string

	// Flushes counts Flush calls.
	Flushes int

	// FlushError, if set, is returned by Flush.
	FlushError error
}

// NewFakeDriver creates an empty FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{Strings: make(map[image.Point]string)}
}

func (f *FakeDriver) Clear() {
	f.Strings = make(map[image.Point]string)
	f.Ops = append(f.Ops, "clear")
}

func (f *FakeDriver) DrawRect(x, y, w, h int) {
	f.Ops = append(f.Ops, "rect")
}

func (f *FakeDriver) DrawString(text string, x, y int) {
	f.Strings[image.Pt(x, y)] = text
	f.Ops = append(f.Ops, "string "+text)
}

func (f *FakeDriver) DrawLine(x0, y0, x1, y1 int) {
	f.Ops = append(f.Ops, "line")
}

func (f *FakeDriver) Flush() error {
	f.Flushes++
	return f.FlushError
}

// TextAt returns the last text drawn at x,y.
func (f *FakeDriver) TextAt(x, y int) string {
	return f.Strings[image.Pt(x, y)]
}

// FakeSink counts frames pushed by a Canvas.
type FakeSink struct {
	Frames int
	Last   image.Image
	Err    error
}

func (s *FakeSink) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if s.Err != nil {
		return s.Err
	}
	s.Frames++
	s.Last = src
	return nil
}
