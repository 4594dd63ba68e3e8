package buzzer

// FakeDriver records the tone on each pin. A pin that is off has tone 0.
type FakeDriver struct {
	Tones map[int]int

	// Commands counts On and Off calls
	Commands int

	// Err, if set, is returned by On and Off
	Err error
}

// NewFakeDriver creates a FakeDriver with every pin silent.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{Tones: make(map[int]int)}
}

// On records hz on pin.
func (f *FakeDriver) On(pin int, hz int) error {
	f.Commands++
	if f.Err != nil {
		return f.Err
	}
	f.Tones[pin] = hz
	return nil
}

// Off records pin as silent.
func (f *FakeDriver) Off(pin int) error {
	f.Commands++
	if f.Err != nil {
		return f.Err
	}
	f.Tones[pin] = 0
	return nil
}

// Sounding reports whether pin is playing a tone.
func (f *FakeDriver) Sounding(pin int) bool {
	return f.Tones[pin] > 0
}
