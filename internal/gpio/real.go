//go:build linux && !tinygo

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "alarm-panel"

// RealButton reads the confirmation button using the Linux GPIO character device.
type RealButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealButton requests the button line as an input with pull-up.
func NewRealButton(chipName string, pin int) (*RealButton, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealButton{chip: chip, line: line}, nil
}

// Pressed returns true while the button pulls the line low.
func (b *RealButton) Pressed() (bool, error) {
	raw, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return raw == 0, nil
}

// Close releases the line and chip.
func (b *RealButton) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealLEDs drives the LED pair as two output lines.
type RealLEDs struct {
	chip  *gpiocdev.Chip
	red   *gpiocdev.Line
	green *gpiocdev.Line
}

// NewRealLEDs requests both LED lines as outputs, initially off.
func NewRealLEDs(chipName string, pinRed, pinGreen int) (*RealLEDs, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	red, err := chip.RequestLine(pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request red pin %d: %w", pinRed, err)
	}

	green, err := chip.RequestLine(pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		red.Close()
		chip.Close()
		return nil, fmt.Errorf("request green pin %d: %w", pinGreen, err)
	}

	return &RealLEDs{chip: chip, red: red, green: green}, nil
}

// Set drives both LEDs.
func (l *RealLEDs) Set(red, green bool) error {
	if err := l.red.SetValue(boolToValue(red)); err != nil {
		return fmt.Errorf("set red pin: %w", err)
	}
	if err := l.green.SetValue(boolToValue(green)); err != nil {
		return fmt.Errorf("set green pin: %w", err)
	}
	return nil
}

// Close switches both LEDs off and releases the lines.
// Pins are left as inputs so nothing is driven after exit.
func (l *RealLEDs) Close() error {
	var errs []error
	for name, line := range map[string]*gpiocdev.Line{"red": l.red, "green": l.green} {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", name, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealWatcher watches one input line for falling edges.
type RealWatcher struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// WatchFalling calls fn from the gpiocdev event goroutine on every falling
// edge of the pull-up input pin. fn must not touch alarm state.
func WatchFalling(chipName string, pin int, fn func()) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			fn()
		}
	}
	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(20*time.Millisecond),
		gpiocdev.WithEventHandler(handler),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request interrupt pin %d: %w", pin, err)
	}

	return &RealWatcher{chip: chip, line: line}, nil
}

// Close stops watching and releases the line.
func (w *RealWatcher) Close() error {
	var errs []error
	if w.line != nil {
		if err := w.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close interrupt pin: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func boolToValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
