// Package gpio provides the alarm panel's digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Button reads the confirmation push button.
type Button interface {
	// Pressed returns the logical button state.
	// The button is active-low with a pull-up: raw 0 = pressed.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// LEDs drives the red/green status LED pair.
type LEDs interface {
	// Set drives both LEDs in one call.
	Set(red, green bool) error

	// Close releases GPIO resources.
	Close() error
}

// Watcher delivers falling edges of an interrupt line until closed.
type Watcher interface {
	Close() error
}

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// Pin defaults (BCM numbering on the Pi, GPIO numbers on the Pico).
const (
	DefaultPinButton  = 5  // confirmation button (A)
	DefaultPinBootsel = 6  // bootloader button (B)
	DefaultPinGreen   = 11 // green LED
	DefaultPinRed     = 13 // red LED
)
