// Package mqtt publishes alarm transitions and lifecycle events to a broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/alarm-panel/internal/logic"
)

// Topic carries alarm transitions.
const Topic = "home/alarm/panel/events"

// TopicSystem carries lifecycle events (STARTUP, SHUTDOWN, HEARTBEAT, OFFLINE).
const TopicSystem = "home/alarm/panel/system"

// Publisher publishes events to MQTT. Implementations never block the
// caller on the network.
type Publisher interface {
	// Publish sends an alarm transition.
	Publish(event logic.Event) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // STARTUP, SHUTDOWN, HEARTBEAT
	Reason     string // signal name, shutdown only
	RawPayload []byte // if set, sent as is
	Retained   bool
}

// Payload is the JSON body of a transition message.
type Payload struct {
	Alarm AlarmPayload `json:"alarm"`
}

// AlarmPayload describes one transition.
type AlarmPayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// FormatPayload creates the JSON payload for a transition. Each call gets
// a fresh message id so consumers can drop replayed duplicates.
func FormatPayload(event logic.Event) ([]byte, error) {
	return json.Marshal(Payload{
		Alarm: AlarmPayload{
			ID:        uuid.NewString(),
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			From:      string(event.From),
			To:        string(event.To),
		},
	})
}

// SystemPayload is the JSON body of a simple lifecycle message.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// WillPayload is the retained last-will message sent by the broker when
// the panel drops off without a clean shutdown.
func WillPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE"}})
	return data
}
