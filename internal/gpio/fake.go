package gpio

import "errors"

// FakeButton is a test double that returns scripted button samples.
type FakeButton struct {
	// Samples contains scripted pressed values to return.
	// Each call to Pressed() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Reads counts calls to Pressed
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Pressed()
	ReadError error
}

// NewFakeButton creates a FakeButton with the given samples.
func NewFakeButton(samples ...bool) *FakeButton {
	return &FakeButton{Samples: samples}
}

// Pressed returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeButton) Pressed() (bool, error) {
	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the samples and clears counters.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}

// LEDState is one recorded LED write.
type LEDState struct {
	Red   bool
	Green bool
}

// FakeLEDs records LED writes.
type FakeLEDs struct {
	Red     bool
	Green   bool
	History []LEDState

	// SetError, if set, will be returned by Set()
	SetError error

	Closed bool
}

// NewFakeLEDs creates a FakeLEDs with both LEDs off.
func NewFakeLEDs() *FakeLEDs {
	return &FakeLEDs{}
}

// Set records the LED state.
func (f *FakeLEDs) Set(red, green bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Red, f.Green = red, green
	f.History = append(f.History, LEDState{Red: red, Green: green})
	return nil
}

// Close marks the LEDs as closed.
func (f *FakeLEDs) Close() error {
	f.Closed = true
	return nil
}
