// Package status holds a concurrency-safe snapshot of the panel for the
// admin server and the MQTT lifecycle payloads. The control goroutine
// writes it; HTTP handlers read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/alarm-panel/internal/logic"
)

// NetworkInfo describes the panel's network link.
type NetworkInfo struct {
	Type   string
	IP     string
	Status string
	SSID   string
}

// Config is the effective configuration shown on the status page.
type Config struct {
	ArmMode     logic.ArmMode
	TickMs      int64
	HeartbeatMs int64
	Broker      string
	ListenAddr  string
	AdminAddr   string
}

// Snapshot is a point-in-time copy of the panel state.
type Snapshot struct {
	State         logic.State
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the time since startup.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the mutable snapshot behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker in the IDLE state.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the alarm state and counters. Called on every tick.
func (t *Tracker) Update(state logic.State, counts logic.Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Counts = counts
	t.mu.Unlock()
}

func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a copy with Now set to the current time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	if s.Network != nil {
		n := *s.Network
		s.Network = &n
	}
	s.Now = time.Now()
	return s
}
