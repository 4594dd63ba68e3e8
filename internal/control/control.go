// Package control holds the out-of-band reset-to-bootloader capability.
// It never touches the alarm state: the only thing it can do is take the
// whole device down.
package control

import (
	"log"
	"sync"
)

// Rebooter performs the irreversible system action.
type Rebooter interface {
	Reboot() error
}

// Plane fires its Rebooter at most once, from any goroutine or interrupt.
// A Rebooter that reports itself Repeatable fires on every Trigger.
type Plane struct {
	rebooter Rebooter
	before   func()
	repeat   bool

	once      sync.Once
	mu        sync.Mutex
	triggered bool
	err       error
}

// NewPlane creates a Plane. before, if non-nil, runs just ahead of the
// reboot (e.g. to silence the buzzers).
func NewPlane(r Rebooter, before func()) *Plane {
	rep, ok := r.(interface{ Repeatable() bool })
	return &Plane{rebooter: r, before: before, repeat: ok && rep.Repeatable()}
}

// Trigger reboots the device. Later calls are logged and ignored.
func (p *Plane) Trigger(reason string) {
	if p.repeat {
		p.fire(reason)
		return
	}
	fired := false
	p.once.Do(func() {
		fired = true
		p.fire(reason)
	})
	if !fired {
		log.Printf("control: %s ignored, reboot already triggered", reason)
	}
}

func (p *Plane) fire(reason string) {
	log.Printf("control: %s, rebooting to bootloader", reason)
	if p.before != nil {
		p.before()
	}
	err := p.rebooter.Reboot()
	if err != nil {
		log.Printf("control: reboot failed: %v", err)
	}
	p.mu.Lock()
	p.triggered = true
	p.err = err
	p.mu.Unlock()
}

// Triggered reports whether Trigger has run and the error it got.
func (p *Plane) Triggered() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.triggered, p.err
}

// LogRebooter only logs. Used when the bootloader button is wired but
// rebooting is disabled.
type LogRebooter struct{}

func (LogRebooter) Reboot() error {
	log.Printf("control: reboot disabled, ignoring")
	return nil
}

// Repeatable lets every press be logged.
func (LogRebooter) Repeatable() bool { return true }
