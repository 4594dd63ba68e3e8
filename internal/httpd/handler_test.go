package httpd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type fakeConn struct {
	id       string
	written  bytes.Buffer
	pending  bytes.Buffer
	flushes  int
	closed   bool
	writeErr error
	flushErr error
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.pending.Write(p)
}

func (c *fakeConn) Flush() error {
	if c.flushErr != nil {
		return c.flushErr
	}
	c.flushes++
	c.written.Write(c.pending.Bytes())
	c.pending.Reset()
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type recObserver struct {
	accepted, closed int
	routes           []Route
	errs             []error
}

func (o *recObserver) Accepted() { o.accepted++ }
func (o *recObserver) Closed()   { o.closed++ }
func (o *recObserver) Routed(r Route, err error) {
	o.routes = append(o.routes, r)
	o.errs = append(o.errs, err)
}

func newTestHandler() (*Handler, *fakeTransitions, *recObserver) {
	ft := &fakeTransitions{}
	obs := &recObserver{}
	return NewHandler(NewRouter(ft), obs), ft, obs
}

func TestHandlerRespondsIdenticallyForEveryRoute(t *testing.T) {
	h, ft, obs := newTestHandler()

	var responses []string
	for _, req := range []string{
		"GET /alarm_on HTTP/1.1\r\nHost: panel\r\n\r\n",
		"GET /alarm_off HTTP/1.1\r\nHost: panel\r\n\r\n",
		"GET /nothing HTTP/1.1\r\nHost: panel\r\n\r\n",
	} {
		c := &fakeConn{id: "c"}
		h.Accept(c)
		if err := h.Receive(c, []byte(req)); err != nil {
			t.Fatalf("Receive(%q): %v", req, err)
		}
		if c.flushes != 1 {
			t.Errorf("expected 1 flush, got %d", c.flushes)
		}
		if c.closed {
			t.Error("connection should stay open after a response")
		}
		responses = append(responses, c.written.String())
	}

	if responses[0] != responses[1] || responses[1] != responses[2] {
		t.Error("responses differ between routes")
	}
	if !strings.HasPrefix(responses[0], "HTTP/1.1 200 OK\r\n") {
		t.Errorf("unexpected response start: %q", responses[0][:20])
	}
	if ft.arms != 1 || ft.disarms != 1 {
		t.Errorf("arms=%d disarms=%d, want 1/1", ft.arms, ft.disarms)
	}
	if obs.accepted != 3 {
		t.Errorf("accepted=%d, want 3", obs.accepted)
	}
	want := []Route{RouteArm, RouteDisarm, RouteNone}
	for i, r := range want {
		if obs.routes[i] != r {
			t.Errorf("route %d = %v, want %v", i, obs.routes[i], r)
		}
	}
}

func TestHandlerRemoteClose(t *testing.T) {
	h, ft, obs := newTestHandler()
	c := &fakeConn{id: "c"}
	h.Accept(c)

	if err := h.Receive(c, nil); err != nil {
		t.Fatalf("Receive(nil): %v", err)
	}
	if !c.closed {
		t.Error("connection not closed")
	}
	if c.written.Len() != 0 || c.pending.Len() != 0 {
		t.Error("response written on remote close")
	}
	if ft.arms+ft.disarms != 0 {
		t.Error("transition invoked on remote close")
	}
	if obs.closed != 1 || len(obs.routes) != 0 {
		t.Errorf("observer: closed=%d routes=%d", obs.closed, len(obs.routes))
	}
}

func TestHandlerEmptySegmentStillResponds(t *testing.T) {
	h, _, _ := newTestHandler()
	c := &fakeConn{id: "c"}

	if err := h.Receive(c, []byte{}); err != nil {
		t.Fatalf("Receive(empty): %v", err)
	}
	if c.written.Len() == 0 {
		t.Error("expected the standard page for an empty segment")
	}
}

func TestHandlerTruncatesOversizedSegment(t *testing.T) {
	h, ft, _ := newTestHandler()
	c := &fakeConn{id: "c"}

	big := "GET /alarm_on HTTP/1.1\r\nX-Pad: " + strings.Repeat("a", 3*RequestBufferSize) + "GET /alarm_off\r\n\r\n"
	if err := h.Receive(c, []byte(big)); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if ft.arms != 1 || ft.disarms != 0 {
		t.Errorf("arms=%d disarms=%d, want 1/0", ft.arms, ft.disarms)
	}
	if c.written.Len() == 0 {
		t.Error("no response written")
	}
}

func TestHandlerTransitionErrorStillResponds(t *testing.T) {
	ft := &fakeTransitions{err: errors.New("buzzer stuck")}
	obs := &recObserver{}
	h := NewHandler(NewRouter(ft), obs)
	c := &fakeConn{id: "c"}

	if err := h.Receive(c, []byte("GET /alarm_off HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if c.written.Len() == 0 {
		t.Error("no response written")
	}
	if obs.errs[0] == nil {
		t.Error("observer did not see the transition error")
	}
}

func TestHandlerWriteErrorClosesConnection(t *testing.T) {
	h, _, _ := newTestHandler()
	c := &fakeConn{id: "c", writeErr: errors.New("reset")}

	if err := h.Receive(c, []byte("GET / HTTP/1.1\r\n\r\n")); err == nil {
		t.Error("expected error")
	}
	if !c.closed {
		t.Error("connection not closed after write error")
	}
}

func TestHandlerFlushErrorClosesConnection(t *testing.T) {
	h, _, _ := newTestHandler()
	c := &fakeConn{id: "c", flushErr: errors.New("broken pipe")}

	if err := h.Receive(c, []byte("GET / HTTP/1.1\r\n\r\n")); err == nil {
		t.Error("expected error")
	}
	if !c.closed {
		t.Error("connection not closed after flush error")
	}
}
