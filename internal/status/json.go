package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/alarm-panel/internal/logic"
)

// StatusJSON is the JSON envelope used by /index.json and lifecycle events.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Active        bool         `json:"active"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

type CountsJSON struct {
	Arms     int `json:"arms"`
	Confirms int `json:"confirms"`
	Disarms  int `json:"disarms"`
}

type NetworkJSON struct {
	Type   string `json:"type"`
	IP     string `json:"ip"`
	Status string `json:"status"`
	SSID   string `json:"ssid,omitempty"`
}

type ConfigJSON struct {
	ArmMode     string `json:"arm_mode"`
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	ListenAddr  string `json:"listen_addr"`
	AdminAddr   string `json:"admin_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}
	inner := StatusInner{
		State:         state,
		Active:        snap.State == logic.StateActive,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Arms:     snap.Counts.Arms,
			Confirms: snap.Counts.Confirms,
			Disarms:  snap.Counts.Disarms,
		},
		Config: ConfigJSON{
			ArmMode:     string(snap.Config.ArmMode),
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			ListenAddr:  snap.Config.ListenAddr,
			AdminAddr:   snap.Config.AdminAddr,
		},
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{Type: n.Type, IP: n.IP, Status: n.Status, SSID: n.SSID}
	}
	return inner
}

// FormatJSON returns the indented status document for the admin server.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact status document for a lifecycle
// event published over MQTT.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
