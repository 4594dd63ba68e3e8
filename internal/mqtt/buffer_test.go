package mqtt

import "testing"

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(4)
	if got := rb.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferKeepsOrder(t *testing.T) {
	rb := newRingBuffer(8)
	for i := 0; i < 5; i++ {
		rb.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if rb.len() != 5 {
		t.Fatalf("len = %d, want 5", rb.len())
	}

	got := rb.drain()
	if len(got) != 5 {
		t.Fatalf("drained %d, want 5", len(got))
	}
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: payload %d", i, m.payload[0])
		}
	}
	if rb.len() != 0 || rb.drain() != nil {
		t.Error("buffer not empty after drain")
	}
}

func TestRingBufferOverwritesOldest(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 7; i++ {
		rb.push(queuedMsg{payload: []byte{byte(i)}})
	}
	if rb.dropped != 4 {
		t.Errorf("dropped = %d, want 4", rb.dropped)
	}

	got := rb.drain()
	want := []byte{4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("drained %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].payload[0] != want[i] {
			t.Errorf("item %d: payload %d, want %d", i, got[i].payload[0], want[i])
		}
	}
	if rb.dropped != 0 {
		t.Error("dropped counter not reset by drain")
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(queuedMsg{payload: []byte{1}})
	rb.push(queuedMsg{payload: []byte{2}})
	rb.push(queuedMsg{payload: []byte{3}})
	rb.drain()

	rb.push(queuedMsg{payload: []byte{9}})
	got := rb.drain()
	if len(got) != 1 || got[0].payload[0] != 9 {
		t.Errorf("unexpected drain after reuse: %+v", got)
	}
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	rb := newRingBuffer(0)
	rb.push(queuedMsg{payload: []byte{1}})
	rb.push(queuedMsg{payload: []byte{2}})
	got := rb.drain()
	if len(got) != 1 || got[0].payload[0] != 2 {
		t.Errorf("unexpected drain: %+v", got)
	}
}
