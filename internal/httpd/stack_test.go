package httpd

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

type recCallbacks struct {
	h        *Handler
	accepted []Conn
	segments [][]byte
}

func (r *recCallbacks) Accept(c Conn) {
	r.accepted = append(r.accepted, c)
	r.h.Accept(c)
}

func (r *recCallbacks) Receive(c Conn, segment []byte) error {
	r.segments = append(r.segments, segment)
	return r.h.Receive(c, segment)
}

func newLoopbackStack(t *testing.T, cfg StackConfig) *ListenerStack {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := NewListenerStack(ln, cfg)
	t.Cleanup(func() { s.Close() })
	return s
}

// pollUntil services the stack until cond holds or the deadline passes.
func pollUntil(t *testing.T, s *ListenerStack, cb Callbacks, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out polling stack")
		}
		s.PollOnce(cb)
		time.Sleep(time.Millisecond)
	}
}

func TestListenerStackServesRequest(t *testing.T) {
	s := newLoopbackStack(t, DefaultStackConfig())
	ft := &fakeTransitions{}
	cb := &recCallbacks{h: NewHandler(NewRouter(ft), nil)}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "GET /alarm_on HTTP/1.1\r\nHost: panel\r\n\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	pollUntil(t, s, cb, func() bool { return ft.arms == 1 })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Sistema de Alarme") {
		t.Error("unexpected body")
	}
	if len(cb.accepted) != 1 {
		t.Errorf("accepted %d connections, want 1", len(cb.accepted))
	}
}

func TestListenerStackRemoteClose(t *testing.T) {
	s := newLoopbackStack(t, DefaultStackConfig())
	ft := &fakeTransitions{}
	cb := &recCallbacks{h: NewHandler(NewRouter(ft), nil)}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	pollUntil(t, s, cb, func() bool { return len(cb.segments) == 1 })

	if cb.segments[0] != nil {
		t.Errorf("expected close event, got %q", cb.segments[0])
	}
	if ft.arms+ft.disarms != 0 {
		t.Error("transition invoked on close")
	}
	if !cb.accepted[0].(*tcpConn).isClosed() {
		t.Error("connection not closed after remote close")
	}
}

func TestListenerStackIdleTimeout(t *testing.T) {
	cfg := DefaultStackConfig()
	cfg.IdleTimeout = 50 * time.Millisecond
	s := newLoopbackStack(t, cfg)
	cb := &recCallbacks{h: NewHandler(NewRouter(&fakeTransitions{}), nil)}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	pollUntil(t, s, cb, func() bool { return len(cb.segments) == 1 })
	if cb.segments[0] != nil {
		t.Errorf("expected close event after idle timeout, got %q", cb.segments[0])
	}
}

func TestListenerStackNoCallbacksOutsidePoll(t *testing.T) {
	s := newLoopbackStack(t, DefaultStackConfig())
	ft := &fakeTransitions{}
	cb := &recCallbacks{h: NewHandler(NewRouter(ft), nil)}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	io.WriteString(conn, "GET /alarm_off HTTP/1.1\r\n\r\n")

	time.Sleep(50 * time.Millisecond)
	if ft.disarms != 0 || len(cb.accepted) != 0 {
		t.Fatal("callbacks ran without PollOnce")
	}

	pollUntil(t, s, cb, func() bool { return ft.disarms == 1 })
}

func TestListenerStackPollOnceIdle(t *testing.T) {
	s := newLoopbackStack(t, DefaultStackConfig())
	cb := &recCallbacks{h: NewHandler(NewRouter(&fakeTransitions{}), nil)}
	if n := s.PollOnce(cb); n != 0 {
		t.Errorf("PollOnce on idle stack handled %d events", n)
	}
}

func TestListenerStackCloseIsIdempotent(t *testing.T) {
	s := newLoopbackStack(t, DefaultStackConfig())
	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	s.Close()
	s.Close()
}

// segmentRecorder keeps a copy of every segment and where it was stored.
type segmentRecorder struct {
	h      *Handler
	copies []string
	bases  []*byte
}

func (r *segmentRecorder) Accept(c Conn) { r.h.Accept(c) }

func (r *segmentRecorder) Receive(c Conn, segment []byte) error {
	if len(segment) > 0 {
		r.copies = append(r.copies, string(segment))
		r.bases = append(r.bases, &segment[:cap(segment)][0])
	}
	return r.h.Receive(c, segment)
}

func TestListenerStackReusesReadBuffer(t *testing.T) {
	s := newLoopbackStack(t, DefaultStackConfig())
	ft := &fakeTransitions{}
	cb := &segmentRecorder{h: NewHandler(NewRouter(ft), nil)}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	br := bufio.NewReader(conn)

	for _, path := range []string{"/alarm_on", "/alarm_off"} {
		io.WriteString(conn, "GET "+path+" HTTP/1.1\r\nHost: panel\r\n\r\n")
		want := len(cb.copies) + 1
		pollUntil(t, s, cb, func() bool { return len(cb.copies) == want })

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		resp, err := http.ReadResponse(br, nil)
		if err != nil {
			t.Fatalf("%s: read response: %v", path, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	if ft.arms != 1 || ft.disarms != 1 {
		t.Errorf("arms=%d disarms=%d, want 1 each", ft.arms, ft.disarms)
	}
	if !strings.Contains(cb.copies[0], "/alarm_on") || !strings.Contains(cb.copies[1], "/alarm_off") {
		t.Errorf("segments %q", cb.copies)
	}
	if cb.bases[0] != cb.bases[1] {
		t.Error("each segment was read into a new buffer")
	}
}
