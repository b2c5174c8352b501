// Package serial defines the byte-oriented serial sink contract
// spec.md §6 describes as an external collaborator: the kernel never
// imports this package, but the example worker programs a demo boots
// need somewhere to write. Only a simple stdout-backed sink is
// provided; a real UART driver is out of scope.
package serial

import (
	"bufio"
	"io"
	"sync"
)

// Sink is the serial byte-sink contract: init, put/get a byte, write a
// buffer, flush, and report how many bytes are available to read.
type Sink interface {
	Init(module int, baud int) error
	PutChar(b byte) error
	GetChar() (byte, error)
	WriteBuffer(p []byte) (int, error)
	Flush() error
	Available() int
}

// StdoutSink is a Sink backed by an io.Writer, useful for running the
// demo kernel without real hardware. GetChar/Available are no-ops
// since stdout is not readable.
type StdoutSink struct {
	mu  sync.Mutex
	w   *bufio.Writer
}

// NewStdoutSink wraps w as a Sink.
func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: bufio.NewWriter(w)}
}

func (s *StdoutSink) Init(int, int) error { return nil }

func (s *StdoutSink) PutChar(b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.WriteByte(b)
}

func (s *StdoutSink) GetChar() (byte, error) { return 0, io.EOF }

func (s *StdoutSink) WriteBuffer(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *StdoutSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *StdoutSink) Available() int { return 0 }
