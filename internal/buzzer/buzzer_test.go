package buzzer

import (
	"errors"
	"testing"
)

func TestPairOnOff(t *testing.T) {
	drv := NewFakeDriver()
	p := NewPair(drv, AlarmToneHz, DefaultPin1, DefaultPin2)

	if err := p.Set(true); err != nil {
		t.Fatalf("Set(true): %v", err)
	}
	for _, pin := range []int{DefaultPin1, DefaultPin2} {
		if drv.Tones[pin] != AlarmToneHz {
			t.Errorf("pin %d: tone %d, want %d", pin, drv.Tones[pin], AlarmToneHz)
		}
	}

	if err := p.Set(false); err != nil {
		t.Fatalf("Set(false): %v", err)
	}
	for _, pin := range []int{DefaultPin1, DefaultPin2} {
		if drv.Sounding(pin) {
			t.Errorf("pin %d still sounding", pin)
		}
	}
	if drv.Commands != 4 {
		t.Errorf("Commands: got %d, want 4", drv.Commands)
	}
}

func TestPairAttemptsEveryPin(t *testing.T) {
	drv := NewFakeDriver()
	drv.Err = errors.New("pwm busy")
	p := NewPair(drv, AlarmToneHz, 1, 2, 3)

	err := p.Set(false)
	if err == nil {
		t.Fatal("expected error")
	}
	if drv.Commands != 3 {
		t.Errorf("expected all 3 pins attempted, got %d", drv.Commands)
	}
}
