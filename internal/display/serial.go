package display

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"purpleair_display/internal/models"
)

const (
	clearScreen = "\f"
	lineEnd     = "\r\n"
)

// SerialSink mirrors every reading to a serial character display.
type SerialSink struct {
	mu   sync.Mutex
	port io.WriteCloser
	opts Options
	now  func() time.Time
}

// NewSerialSink wraps an already opened port.
func NewSerialSink(port io.WriteCloser, opts Options) *SerialSink {
	return &SerialSink{port: port, opts: opts, now: time.Now}
}

// OpenSerial opens the named port at baud and returns a sink on it.
func OpenSerial(name string, baud int, opts Options) (*SerialSink, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return NewSerialSink(port, opts), nil
}

// Publish renders r and writes the frame.
func (s *SerialSink) Publish(ctx context.Context, r models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.WriteFrame(Render(r, s.now(), s.opts))
}

// WriteFrame clears the screen and writes each line terminated by CRLF.
func (s *SerialSink) WriteFrame(f Frame) error {
	var b strings.Builder
	b.WriteString(clearScreen)
	for _, l := range f.Lines {
		b.WriteString(l)
		b.WriteString(lineEnd)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return fmt.Errorf("serial display closed")
	}
	if _, err := io.WriteString(s.port, b.String()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
