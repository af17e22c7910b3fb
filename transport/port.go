package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.bug.st/serial"
)

// Port is the character channel under a LineTransport.
//
// It is the subset of the go.bug.st/serial Port method set the transport needs.
// Read must return (0, nil) once the read timeout elapses with no data, as serial
// ports do.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// modemControl is implemented by ports with RTS/DTR output lines.
type modemControl interface {
	SetRTS(rts bool) error
	SetDTR(dtr bool) error
}

// inputResetter is implemented by ports that can discard unread input.
type inputResetter interface {
	ResetInputBuffer() error
}

// serialOpener opens a serial device. Tests replace it to avoid real hardware.
var serialOpener = func(name string, mode *serial.Mode) (Port, error) {
	return serial.Open(name, mode)
}

// OpenPort opens the serial device described by cfg and applies its read timeout.
//
// go.bug.st/serial has no RTS/CTS or XON/XOFF handshaking. When hardware flow
// control is requested the RTS and DTR lines are asserted so that instruments
// wired for hardware handshaking see a ready host; a request for software flow
// control is logged and otherwise ignored.
func OpenPort(cfg *Config) (Port, error) {
	mode, err := serialMode(cfg)
	if err != nil {
		return nil, err
	}

	port, err := serialOpener(cfg.portName, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", cfg.portName, err)
	}

	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: set read timeout on %s: %w", cfg.portName, err)
	}

	if mc, ok := port.(modemControl); ok && cfg.hardFlow {
		if err := mc.SetRTS(true); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("transport: assert RTS on %s: %w", cfg.portName, err)
		}
		if err := mc.SetDTR(true); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("transport: assert DTR on %s: %w", cfg.portName, err)
		}
	}

	if cfg.softFlow {
		cfg.logger.Warn("transport: software flow control is not supported by the serial driver", "port", cfg.portName)
	}

	cfg.logger.Debug("transport: port opened", "port", cfg.String(), "readTimeout", cfg.readTimeout)

	return port, nil
}

func serialMode(cfg *Config) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: cfg.dataBits,
	}

	switch cfg.parity {
	case ParityNone:
		mode.Parity = serial.NoParity
	case ParityEven:
		mode.Parity = serial.EvenParity
	case ParityOdd:
		mode.Parity = serial.OddParity
	case ParityMark:
		mode.Parity = serial.MarkParity
	case ParitySpace:
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("transport: invalid parity %q", string(cfg.parity))
	}

	switch cfg.stopBits {
	case StopBits1:
		mode.StopBits = serial.OneStopBit
	case StopBits1_5:
		mode.StopBits = serial.OnePointFiveStopBits
	case StopBits2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("transport: invalid stop bits %q", string(cfg.stopBits))
	}

	return mode, nil
}

// ListPorts returns the serial device names present on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// connPort adapts a net.Conn to the Port contract.
type connPort struct {
	conn    net.Conn
	timeout time.Duration
}

var _ Port = (*connPort)(nil)

// NewConnPort wraps conn as a Port. The read timeout becomes a read deadline
// renewed on every Read, and is also used as the write deadline.
func NewConnPort(conn net.Conn) Port {
	return &connPort{conn: conn, timeout: DefaultReadTimeout}
}

func (p *connPort) SetReadTimeout(t time.Duration) error {
	if t <= 0 {
		return fmt.Errorf("transport: read timeout %v must be positive", t)
	}
	p.timeout = t

	return nil
}

func (p *connPort) Read(b []byte) (int, error) {
	if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return 0, err
	}

	n, err := p.conn.Read(b)
	if err != nil && isTimeout(err) {
		return n, nil
	}

	return n, err
}

func (p *connPort) Write(b []byte) (int, error) {
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
		return 0, err
	}

	return p.conn.Write(b)
}

func (p *connPort) Close() error {
	return p.conn.Close()
}

// ResetInputBuffer reads and discards bytes until the connection is quiet.
func (p *connPort) ResetInputBuffer() error {
	buf := make([]byte, 256)
	for {
		if err := p.conn.SetReadDeadline(time.Now().Add(MinReadTimeout)); err != nil {
			return err
		}
		if _, err := p.conn.Read(buf); err != nil {
			if isTimeout(err) {
				return nil
			}
			return err
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
