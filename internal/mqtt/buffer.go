package mqtt

import "log"

// queuedMsg is a serialized message waiting for the broker.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds messages while the broker is unreachable. When full the
// oldest message is overwritten. Not safe for concurrent use.
type ringBuffer struct {
	buf     []queuedMsg
	next    int
	count   int
	dropped int
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{buf: make([]queuedMsg, capacity)}
}

func (r *ringBuffer) push(msg queuedMsg) {
	r.buf[r.next] = msg
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
		return
	}
	if r.dropped == 0 {
		log.Printf("mqtt: offline queue full (%d messages), dropping oldest", len(r.buf))
	}
	r.dropped++
}

// drain returns the queued messages oldest first and empties the buffer.
func (r *ringBuffer) drain() []queuedMsg {
	if r.count == 0 {
		return nil
	}
	out := make([]queuedMsg, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
		r.buf[(start+i)%len(r.buf)] = queuedMsg{}
	}
	if r.dropped > 0 {
		log.Printf("mqtt: %d queued messages were dropped while offline", r.dropped)
	}
	r.next, r.count, r.dropped = 0, 0, 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
