package httpd

import (
	"fmt"
	"log"
)

// RequestBufferSize is the capacity of the pre-allocated request buffer.
// Longer segments are truncated; the request line is always at the front.
const RequestBufferSize = 2048

// logPreview is how much of each request is written to the log.
const logPreview = 200

// Conn is one accepted connection as seen by the callbacks.
type Conn interface {
	// ID identifies the connection in logs.
	ID() string

	// Write queues p for sending. p may be reused once Write returns.
	Write(p []byte) (int, error)

	// Flush sends everything queued by Write.
	Flush() error

	// Close tears the connection down.
	Close() error
}

// Callbacks receives network events from a network service. Every call
// happens on the goroutine that services the network.
type Callbacks interface {
	Accept(c Conn)
	Receive(c Conn, segment []byte) error
}

// Observer is notified of callback outcomes. Implementations must be cheap:
// they run on the control goroutine.
type Observer interface {
	Accepted()
	Closed()
	Routed(route Route, err error)
}

// Handler implements the accept/receive callbacks. It owns one request
// buffer and one response buffer, both reused for every segment, so
// receiving never allocates. Not safe for concurrent use.
type Handler struct {
	router   *Router
	observer Observer

	req  [RequestBufferSize]byte
	resp [ResponseSize]byte
}

// NewHandler creates a Handler routing through router. observer may be nil.
func NewHandler(router *Router, observer Observer) *Handler {
	return &Handler{router: router, observer: observer}
}

// Accept is called once for each new connection.
func (h *Handler) Accept(c Conn) {
	log.Printf("httpd: accepted %s", c.ID())
	if h.observer != nil {
		h.observer.Accepted()
	}
}

// Receive processes one inbound segment. A nil segment means the remote
// end closed the connection: it is closed and nothing is sent.
func (h *Handler) Receive(c Conn, segment []byte) error {
	if segment == nil {
		log.Printf("httpd: %s closed by remote", c.ID())
		if h.observer != nil {
			h.observer.Closed()
		}
		return c.Close()
	}

	n := copy(h.req[:], segment)
	if n < len(segment) {
		log.Printf("httpd: %s segment of %d bytes truncated to %d", c.ID(), len(segment), n)
	}
	req := h.req[:n]
	log.Printf("httpd: %s request: %q", c.ID(), preview(req))

	route, routeErr := h.router.Dispatch(req)
	if routeErr != nil {
		log.Printf("httpd: %s %s transition error: %v", c.ID(), route, routeErr)
	}
	if h.observer != nil {
		h.observer.Routed(route, routeErr)
	}

	resp, err := RenderResponse(h.resp[:])
	if err != nil {
		return fmt.Errorf("render response: %w", err)
	}
	if _, err := c.Write(resp); err != nil {
		c.Close()
		return fmt.Errorf("write response to %s: %w", c.ID(), err)
	}
	if err := c.Flush(); err != nil {
		c.Close()
		return fmt.Errorf("flush response to %s: %w", c.ID(), err)
	}
	return nil
}

func preview(req []byte) []byte {
	if len(req) > logPreview {
		return req[:logPreview]
	}
	return req
}
