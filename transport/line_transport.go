package transport

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/hackerfriendly/jeol-buddy/logger"
)

// Terminator ends every frame on the wire. There is no line feed.
const Terminator byte = '\r'

// Sentinel errors for the line transport.
var (
	// ErrTimeout indicates the port went quiet before a frame terminator arrived,
	// or a write did not complete within the timeout.
	ErrTimeout = errors.New("transport: timeout")
	// ErrClosed indicates the port reached end-of-file or was closed.
	ErrClosed = errors.New("transport: port closed")
)

// LineTransport reads and writes CR-terminated frames over a Port.
//
// This type is NOT goroutine-safe. A single session owns the port for its
// lifetime, matching the single consumer of the physical link.
type LineTransport struct {
	port   Port
	logger logger.Logger
	buf    [1]byte
}

// NewLineTransport wraps port, applying the read timeout and logger from cfg.
// A nil cfg keeps the port's own timeout and uses the default logger.
func NewLineTransport(port Port, cfg *Config) (*LineTransport, error) {
	if port == nil {
		return nil, errors.New("transport: port is nil")
	}

	lt := &LineTransport{
		port:   port,
		logger: logger.Component("transport"),
	}

	if cfg != nil {
		if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
			return nil, fmt.Errorf("transport: set read timeout: %w", err)
		}
		lt.logger = cfg.logger
	}

	return lt, nil
}

// Open opens the serial device described by cfg and returns a LineTransport on it.
func Open(cfg *Config) (*LineTransport, error) {
	if cfg == nil {
		return nil, errors.New("transport: config is nil")
	}

	port, err := OpenPort(cfg)
	if err != nil {
		return nil, err
	}

	return &LineTransport{port: port, logger: cfg.logger}, nil
}

// WriteFrame writes payload followed by the terminator.
func (lt *LineTransport) WriteFrame(payload []byte) error {
	data := make([]byte, 0, len(payload)+1)
	data = append(data, payload...)
	data = append(data, Terminator)

	for written := 0; written < len(data); {
		n, err := lt.port.Write(data[written:])
		written += n

		if err != nil {
			return classify("write", err)
		}
		if n == 0 {
			return fmt.Errorf("transport: write: %w", io.ErrShortWrite)
		}
	}

	lt.logger.Debug("transport: frame written", "frame", string(payload))

	return nil
}

// ReadFrame reads bytes until the terminator and returns them without it.
//
// If the port goes quiet first, the bytes read so far (possibly none) are returned
// together with an error wrapping ErrTimeout. At end-of-file the partial bytes are
// returned with an error wrapping ErrClosed.
func (lt *LineTransport) ReadFrame() ([]byte, error) {
	var frame []byte

	for {
		b, err := lt.readByte()
		if err != nil {
			if len(frame) > 0 {
				lt.logger.Debug("transport: partial frame", "frame", string(frame), "error", err)
			}

			return frame, fmt.Errorf("%w: after %d bytes without terminator", err, len(frame))
		}

		if b == Terminator {
			lt.logger.Debug("transport: frame read", "frame", string(frame))
			return frame, nil
		}

		frame = append(frame, b)
	}
}

// Flush discards unread input if the port supports it.
func (lt *LineTransport) Flush() error {
	if r, ok := lt.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			return classify("flush", err)
		}
	}

	return nil
}

// Close closes the underlying port. An operation blocked on the port fails
// with ErrClosed or a port error.
func (lt *LineTransport) Close() error {
	return lt.port.Close()
}

func (lt *LineTransport) readByte() (byte, error) {
	n, err := lt.port.Read(lt.buf[:])
	if n == 1 {
		return lt.buf[0], nil
	}

	if err == nil || isTimeout(err) {
		return 0, ErrTimeout
	}

	return 0, classify("read", err)
}

func classify(op string, err error) error {
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
		return fmt.Errorf("%w: %s: %w", ErrClosed, op, err)
	default:
		return fmt.Errorf("transport: %s: %w", op, err)
	}
}
