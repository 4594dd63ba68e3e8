// Package console mirrors the diagnostic log to a serial port, the way the
// panel firmware reports over its USB/UART console.
package console

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/tarm/serial"
)

// Mirror is a log destination that never fails the logger: write errors
// on the mirrored port are counted and otherwise ignored.
type Mirror struct {
	w       io.Writer
	closer  io.Closer
	dropped atomic.Int64
}

// Open opens a serial device as a Mirror.
func Open(device string, baud int) (*Mirror, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial console %s: %w", device, err)
	}
	return &Mirror{w: port, closer: port}, nil
}

// NewMirror wraps an arbitrary writer.
func NewMirror(w io.Writer) *Mirror {
	return &Mirror{w: w}
}

func (m *Mirror) Write(p []byte) (int, error) {
	if _, err := m.w.Write(p); err != nil {
		m.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped returns the number of writes that failed on the port.
func (m *Mirror) Dropped() int64 {
	return m.dropped.Load()
}

func (m *Mirror) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

// Attach sends the standard logger to stderr and m. The returned function
// restores stderr-only logging.
func Attach(m *Mirror) (restore func()) {
	log.SetOutput(io.MultiWriter(os.Stderr, m))
	return func() { log.SetOutput(os.Stderr) }
}
