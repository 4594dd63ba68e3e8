package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/alarm-panel/internal/logic"
)

// DefaultQueueSize is how many messages are kept while offline.
const DefaultQueueSize = 64

// Options configures a RealPublisher.
type Options struct {
	Broker    string
	ClientID  string
	QueueSize int
}

// RealPublisher publishes to a broker without ever blocking the caller.
// While the connection is down messages are queued and replayed, oldest
// first, when it comes back.
type RealPublisher struct {
	client paho.Client

	mu    sync.Mutex
	queue *ringBuffer
}

// NewRealPublisher starts connecting to the broker in the background.
func NewRealPublisher(opts Options) *RealPublisher {
	if opts.ClientID == "" {
		opts.ClientID = "alarm-panel"
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	p := &RealPublisher{queue: newRingBuffer(opts.QueueSize)}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(WillPayload()), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			log.Printf("mqtt: connected to %s", opts.Broker)
			p.flush()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(co)
	p.client.Connect()
	return p
}

// Publish queues or sends an alarm transition (QoS 1, not retained).
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.send(queuedMsg{topic: Topic, payload: payload, qos: 1})
	return nil
}

// PublishSystem queues or sends a lifecycle event (QoS 1).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.send(queuedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Queued returns the number of messages waiting for the broker.
func (p *RealPublisher) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Close waits briefly for in-flight messages and disconnects.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

func (p *RealPublisher) send(msg queuedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.client.IsConnectionOpen() || p.queue.len() > 0 {
		p.queue.push(msg)
		return
	}
	p.publish(msg)
}

// flush replays the offline queue. Runs on the paho callback goroutine.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	msgs := p.queue.drain()
	if len(msgs) > 0 {
		log.Printf("mqtt: replaying %d queued messages", len(msgs))
	}
	for _, m := range msgs {
		p.publish(m)
	}
}

func (p *RealPublisher) publish(m queuedMsg) {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: publish to %s timed out", m.topic)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: publish to %s: %v", m.topic, err)
		}
	}()
}
