package httpd

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// StackConfig tunes a ListenerStack.
type StackConfig struct {
	// SegmentSize is the read size for one receive event.
	SegmentSize int
	// IdleTimeout reports a silent connection as closed by the remote (0 = never).
	IdleTimeout time.Duration
	// WriteTimeout bounds Flush (0 = no deadline).
	WriteTimeout time.Duration
	// QueueSize is the number of undispatched events buffered before the
	// accept and read goroutines block.
	QueueSize int
}

// DefaultStackConfig returns the settings used by the panel.
func DefaultStackConfig() StackConfig {
	return StackConfig{
		SegmentSize:  1460,
		IdleTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Second,
		QueueSize:    32,
	}
}

type eventKind int

const (
	evAccept eventKind = iota
	evSegment
	evRemoteClose
)

type stackEvent struct {
	kind eventKind
	conn *tcpConn
	data []byte
}

// ListenerStack adapts a net.Listener to the cooperative callback model.
// Background goroutines only accept connections and read segments; all
// callbacks run inside PollOnce, on the caller's goroutine, one at a time.
// Events are never dropped: when the queue is full the readers wait.
type ListenerStack struct {
	ln     net.Listener
	cfg    StackConfig
	events chan stackEvent
	done   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup

	mu    sync.Mutex
	conns map[*tcpConn]struct{}
}

// NewListenerStack starts accepting on ln.
func NewListenerStack(ln net.Listener, cfg StackConfig) *ListenerStack {
	def := DefaultStackConfig()
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = def.SegmentSize
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	s := &ListenerStack{
		ln:     ln,
		cfg:    cfg,
		events: make(chan stackEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		conns:  make(map[*tcpConn]struct{}),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	return s
}

// Addr returns the listening address.
func (s *ListenerStack) Addr() net.Addr {
	return s.ln.Addr()
}

// PollOnce dispatches the events pending right now and returns how many
// were handled. It never blocks waiting for new events.
func (s *ListenerStack) PollOnce(cb Callbacks) int {
	n := 0
	for n < cap(s.events) {
		select {
		case ev := <-s.events:
			s.dispatch(cb, ev)
			n++
		default:
			return n
		}
	}
	return n
}

// Close stops accepting, closes every open connection and waits for the
// background goroutines to exit.
func (s *ListenerStack) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ln.Close()
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return err
}

func (s *ListenerStack) dispatch(cb Callbacks, ev stackEvent) {
	switch ev.kind {
	case evAccept:
		cb.Accept(ev.conn)
	case evSegment:
		defer ev.conn.release()
		if ev.conn.isClosed() {
			return
		}
		if err := cb.Receive(ev.conn, ev.data); err != nil {
			log.Printf("httpd: receive on %s: %v", ev.conn.ID(), err)
		}
	case evRemoteClose:
		s.untrack(ev.conn)
		if ev.conn.isClosed() {
			return
		}
		if err := cb.Receive(ev.conn, nil); err != nil {
			log.Printf("httpd: close %s: %v", ev.conn.ID(), err)
		}
	}
}

func (s *ListenerStack) acceptLoop() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("httpd: accept error: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		tc := newTCPConn(c, s.cfg.SegmentSize, s.cfg.WriteTimeout)
		s.track(tc)
		if !s.send(stackEvent{kind: evAccept, conn: tc}) {
			tc.Close()
			return
		}
		s.wg.Add(1)
		go s.readLoop(tc)
	}
}

func (s *ListenerStack) readLoop(tc *tcpConn) {
	defer s.wg.Done()
	for {
		if s.cfg.IdleTimeout > 0 {
			tc.conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}
		n, err := tc.conn.Read(tc.rbuf)
		if n > 0 {
			if !s.send(stackEvent{kind: evSegment, conn: tc, data: tc.rbuf[:n]}) {
				return
			}
			// rbuf is reused: wait until the segment has been dispatched.
			select {
			case <-tc.consumed:
			case <-s.done:
				return
			}
		}
		if err != nil {
			if tc.isClosed() {
				s.untrack(tc)
				return
			}
			s.send(stackEvent{kind: evRemoteClose, conn: tc})
			return
		}
	}
}

func (s *ListenerStack) send(ev stackEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *ListenerStack) track(c *tcpConn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *ListenerStack) untrack(c *tcpConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// tcpConn is a Conn over a net.Conn. Writes are buffered until Flush.
// Segments are read into rbuf, allocated once per connection; at most one
// segment per connection is in flight.
type tcpConn struct {
	id           string
	conn         net.Conn
	w            *bufio.Writer
	rbuf         []byte
	consumed     chan struct{}
	writeTimeout time.Duration
	closed       atomic.Bool
}

func newTCPConn(c net.Conn, segmentSize int, writeTimeout time.Duration) *tcpConn {
	return &tcpConn{
		id:           fmt.Sprintf("%s#%s", c.RemoteAddr(), uuid.New().String()[:8]),
		conn:         c,
		w:            bufio.NewWriterSize(c, ResponseSize),
		rbuf:         make([]byte, segmentSize),
		consumed:     make(chan struct{}, 1),
		writeTimeout: writeTimeout,
	}
}

// release hands rbuf back to the reader.
func (c *tcpConn) release() {
	select {
	case c.consumed <- struct{}{}:
	default:
	}
}

func (c *tcpConn) ID() string {
	return c.id
}

func (c *tcpConn) Write(p []byte) (int, error) {
	if c.isClosed() {
		return 0, net.ErrClosed
	}
	return c.w.Write(p)
}

func (c *tcpConn) Flush() error {
	if c.isClosed() {
		return net.ErrClosed
	}
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.w.Flush()
}

func (c *tcpConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

func (c *tcpConn) isClosed() bool {
	return c.closed.Load()
}
