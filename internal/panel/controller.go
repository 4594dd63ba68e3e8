package panel

import (
	"log"
	"time"

	"github.com/sweeney/alarm-panel/internal/httpd"
	"github.com/sweeney/alarm-panel/internal/logic"
)

// Poller is a cooperative network service.
type Poller interface {
	PollOnce(cb httpd.Callbacks) int
}

// Publisher receives every state transition.
type Publisher interface {
	Publish(event logic.Event) error
}

// Recorder counts transitions and exposes the current state.
type Recorder interface {
	Transition(event logic.Event)
	SetState(state logic.State)
}

// Tracker holds the state shown by the admin server.
type Tracker interface {
	Update(state logic.State, counts logic.Counts)
}

// Controller runs the main loop body. All of its work, including the
// network callbacks, happens on the goroutine that calls Tick.
type Controller struct {
	stack    Poller
	handler  httpd.Callbacks
	machine  *logic.Machine
	pattern  *logic.Pattern
	pub      Publisher
	recorder Recorder
	tracker  Tracker
}

// Config lists the collaborators of a Controller. Pub, Recorder and
// Tracker are optional.
type Config struct {
	Stack    Poller
	Handler  httpd.Callbacks
	Machine  *logic.Machine
	Pattern  *logic.Pattern
	Pub      Publisher
	Recorder Recorder
	Tracker  Tracker
}

// NewController creates a Controller.
func NewController(cfg Config) *Controller {
	return &Controller{
		stack:    cfg.Stack,
		handler:  cfg.Handler,
		machine:  cfg.Machine,
		pattern:  cfg.Pattern,
		pub:      cfg.Pub,
		recorder: cfg.Recorder,
		tracker:  cfg.Tracker,
	}
}

// Start drives the outputs to the IDLE configuration.
func (c *Controller) Start() error {
	return c.reset()
}

// Tick performs one main loop iteration: service the network, sample the
// confirmation button, report transitions and advance the active pattern.
func (c *Controller) Tick(now time.Time) {
	c.stack.PollOnce(c.handler)

	if confirmed, err := c.machine.PollConfirm(); err != nil {
		log.Printf("panel: %v", err)
	} else if confirmed {
		log.Printf("panel: button confirmed, alarm armed")
	}

	c.drainEvents()

	if c.machine.State() == logic.StateActive {
		if _, err := c.pattern.Step(now); err != nil {
			log.Printf("panel: render pattern: %v", err)
		}
	} else if err := c.pattern.Stop(); err != nil {
		log.Printf("panel: render idle frame: %v", err)
	}

	c.publishState()
}

// Shutdown disarms the outputs before exit.
func (c *Controller) Shutdown() error {
	return c.reset()
}

func (c *Controller) reset() error {
	err := c.machine.Disarm()
	c.pattern.Cancel()
	c.drainEvents()
	c.publishState()
	return err
}

func (c *Controller) drainEvents() {
	for _, ev := range c.machine.Events() {
		log.Printf("event: %s (%s -> %s)", ev.Type, ev.From, ev.To)

		// Disarm already rendered the idle frame.
		if ev.From == logic.StateActive {
			c.pattern.Cancel()
		}
		if c.recorder != nil {
			c.recorder.Transition(ev)
		}
		if c.pub != nil {
			if err := c.pub.Publish(ev); err != nil {
				log.Printf("mqtt: publish failed: %v", err)
			}
		}
	}
}

func (c *Controller) publishState() {
	state := c.machine.State()
	if c.recorder != nil {
		c.recorder.SetState(state)
	}
	if c.tracker != nil {
		c.tracker.Update(state, c.machine.Counts())
	}
}
