package display

import (
	"errors"
	"image"
	"testing"
)

func litIn(c *Canvas, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c.Lit(x, y) {
				n++
			}
		}
	}
	return n
}

func TestCanvasStartsBlank(t *testing.T) {
	c := NewCanvas(nil)
	if n := litIn(c, c.Image().Bounds()); n != 0 {
		t.Errorf("expected blank canvas, %d pixels lit", n)
	}
}

func TestCanvasDrawLineHorizontal(t *testing.T) {
	c := NewCanvas(nil)
	c.DrawLine(3, 15, 123, 15)

	for x := 3; x <= 123; x++ {
		if !c.Lit(x, 15) {
			t.Fatalf("pixel %d,15 not lit", x)
		}
	}
	if c.Lit(2, 15) || c.Lit(124, 15) || c.Lit(50, 14) {
		t.Error("line drew outside its endpoints")
	}
}

func TestCanvasDrawLineDiagonal(t *testing.T) {
	c := NewCanvas(nil)
	c.DrawLine(0, 0, 10, 10)
	for i := 0; i <= 10; i++ {
		if !c.Lit(i, i) {
			t.Errorf("pixel %d,%d not lit", i, i)
		}
	}
}

func TestCanvasDrawRectOutline(t *testing.T) {
	c := NewCanvas(nil)
	c.DrawRect(3, 3, 122, 60)

	corners := []image.Point{{3, 3}, {124, 3}, {3, 62}, {124, 62}}
	for _, p := range corners {
		if !c.Lit(p.X, p.Y) {
			t.Errorf("corner %v not lit", p)
		}
	}
	if c.Lit(60, 30) {
		t.Error("rectangle interior should stay dark")
	}
}

func TestCanvasDrawStringAndOverwrite(t *testing.T) {
	c := NewCanvas(nil)
	cell := c.TextBounds("ATIVADO...", 26, 36)

	c.DrawString("ATIVADO...", 26, 36)
	if litIn(c, cell) == 0 {
		t.Fatal("DrawString lit no pixels")
	}
	if n := litIn(c, image.Rect(0, 0, Width, 30)); n != 0 {
		t.Errorf("DrawString lit %d pixels above its cell", n)
	}

	c.DrawString("          ", 26, 36)
	if n := litIn(c, cell); n != 0 {
		t.Errorf("blank string left %d pixels lit", n)
	}
}

func TestCanvasTextBoundsClipped(t *testing.T) {
	c := NewCanvas(nil)
	r := c.TextBounds("0123456789012345678901234567890", 100, 60)
	if !r.In(c.Image().Bounds()) {
		t.Errorf("bounds %v outside frame", r)
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(nil)
	c.DrawRect(0, 0, Width, Height)
	c.Clear()
	if n := litIn(c, c.Image().Bounds()); n != 0 {
		t.Errorf("Clear left %d pixels lit", n)
	}
}

func TestCanvasFlush(t *testing.T) {
	sink := &FakeSink{}
	c := NewCanvas(sink)
	c.DrawLine(0, 0, 5, 0)

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sink.Frames != 1 {
		t.Errorf("Frames: got %d, want 1", sink.Frames)
	}
	if sink.Last == nil || sink.Last.Bounds() != image.Rect(0, 0, Width, Height) {
		t.Error("sink did not receive the full frame")
	}

	sink.Err = errors.New("i2c nack")
	if err := c.Flush(); err == nil {
		t.Error("expected sink error from Flush")
	}
}

func TestCanvasFlushNilSink(t *testing.T) {
	c := NewCanvas(nil)
	if err := c.Flush(); err != nil {
		t.Errorf("Flush without sink: %v", err)
	}
}
