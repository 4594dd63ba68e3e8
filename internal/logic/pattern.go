package logic

import (
	"errors"
	"time"
)

// BuzzerAction is what a pattern phase does to the buzzers.
type BuzzerAction int

const (
	BuzzerKeep BuzzerAction = iota
	BuzzerOn
	BuzzerOff
)

// Phase is one step of the active alarm pattern.
type Phase struct {
	Text    string
	Buzzers BuzzerAction
	Hold    time.Duration
}

// ActivePhases is the repeating "ATIVADO" cycle shown while the alarm is active.
var ActivePhases = []Phase{
	{Text: "ATIVADO.  ", Buzzers: BuzzerOn, Hold: 200 * time.Millisecond},
	{Text: "ATIVADO.. ", Buzzers: BuzzerOff, Hold: 100 * time.Millisecond},
	{Text: "ATIVADO...", Buzzers: BuzzerKeep, Hold: 100 * time.Millisecond},
}

// Pattern renders the active alarm cycle without sleeping. The caller
// invokes Step on every loop iteration; a phase is only rendered when the
// previous one's hold time has elapsed.
type Pattern struct {
	out    Outputs
	phases []Phase

	running bool
	idle    bool
	index   int
	due     time.Time
}

// NewPattern creates a Pattern over the given phases.
func NewPattern(out Outputs, phases []Phase) *Pattern {
	return &Pattern{out: out, phases: phases}
}

// Running reports whether the pattern is cycling.
func (p *Pattern) Running() bool {
	return p.running
}

// Phase returns the index of the last rendered phase.
func (p *Pattern) Phase() int {
	return p.index
}

// Step renders the next phase if it is due. The first call after Stop
// restarts the cycle at phase 0. Returns whether a phase was rendered.
func (p *Pattern) Step(now time.Time) (bool, error) {
	if len(p.phases) == 0 {
		return false, nil
	}
	if !p.running {
		p.running = true
		p.idle = false
		p.index = 0
		return true, p.render(now)
	}
	if now.Before(p.due) {
		return false, nil
	}
	p.index = (p.index + 1) % len(p.phases)
	return true, p.render(now)
}

// Stop leaves the active cycle and renders the idle frame: blank status
// line, buzzers off. The idle frame is rendered once per transition.
func (p *Pattern) Stop() error {
	p.running = false
	if p.idle {
		return nil
	}
	p.idle = true
	return errors.Join(
		p.out.StatusLine(TextBlank),
		p.out.SetBuzzers(false),
	)
}

// Cancel leaves the active cycle without rendering. Use it when something
// else has already drawn the idle frame.
func (p *Pattern) Cancel() {
	p.running = false
	p.idle = true
}

func (p *Pattern) render(now time.Time) error {
	ph := p.phases[p.index]
	p.due = now.Add(ph.Hold)

	var errs []error
	errs = append(errs, p.out.StatusLine(ph.Text))
	switch ph.Buzzers {
	case BuzzerOn:
		errs = append(errs, p.out.SetBuzzers(true))
	case BuzzerOff:
		errs = append(errs, p.out.SetBuzzers(false))
	}
	return errors.Join(errs...)
}
