package transport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackerfriendly/jeol-buddy/logger"
)

// Default serial settings of the microscope's external control port.
const (
	DefaultPortName    = "/dev/ttyS0"
	DefaultBaudRate    = 2400
	DefaultDataBits    = 8
	DefaultParity      = ParityNone
	DefaultStopBits    = StopBits1
	DefaultReadTimeout = 5 * time.Second
)

// Range limits for the read timeout.
const (
	MinReadTimeout = 10 * time.Millisecond
	MaxReadTimeout = 10 * time.Minute
)

// Parity is the serial parity mode, using the single-letter names of the
// microscope's configuration menu.
type Parity string

const (
	ParityNone  Parity = "N"
	ParityEven  Parity = "E"
	ParityOdd   Parity = "O"
	ParityMark  Parity = "M"
	ParitySpace Parity = "S"
)

// StopBits is the number of serial stop bits.
type StopBits string

const (
	StopBits1   StopBits = "1"
	StopBits1_5 StopBits = "1.5"
	StopBits2   StopBits = "2"
)

// Config holds the serial channel settings. They are passed through to the
// serial driver unmodified; no negotiation happens at this layer.
type Config struct {
	portName    string
	baudRate    int
	dataBits    int
	parity      Parity
	stopBits    StopBits
	readTimeout time.Duration

	softFlow bool
	hardFlow bool

	logger logger.Logger
}

// NewConfig creates a serial configuration for the named port.
//
// The defaults are 2400 baud, 8 data bits, no parity, one stop bit, a 5 second
// read timeout, hardware flow control on and software flow control off.
// opts are functional options applied in order; see With* functions.
func NewConfig(portName string, opts ...Option) (*Config, error) {
	if strings.TrimSpace(portName) == "" {
		return nil, errors.New("transport: port name is empty")
	}

	cfg := &Config{
		portName:    portName,
		baudRate:    DefaultBaudRate,
		dataBits:    DefaultDataBits,
		parity:      DefaultParity,
		stopBits:    DefaultStopBits,
		readTimeout: DefaultReadTimeout,
		hardFlow:    true,
		logger:      logger.Component("transport"),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// PortName returns the serial device name.
func (cfg *Config) PortName() string { return cfg.portName }

// BaudRate returns the line speed.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// DataBits returns the number of data bits per character.
func (cfg *Config) DataBits() int { return cfg.dataBits }

// Parity returns the parity mode.
func (cfg *Config) Parity() Parity { return cfg.parity }

// StopBits returns the number of stop bits.
func (cfg *Config) StopBits() StopBits { return cfg.stopBits }

// ReadTimeout returns the per-byte read timeout.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// SoftFlow reports whether XON/XOFF flow control was requested.
func (cfg *Config) SoftFlow() bool { return cfg.softFlow }

// HardFlow reports whether RTS/CTS flow control was requested.
func (cfg *Config) HardFlow() bool { return cfg.hardFlow }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// String describes the line settings, e.g. "/dev/ttyS0 2400 8N1".
func (cfg *Config) String() string {
	return fmt.Sprintf("%s %d %d%s%s", cfg.portName, cfg.baudRate, cfg.dataBits, cfg.parity, cfg.stopBits)
}

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate sets the line speed.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("transport: baud rate %d must be positive", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithDataBits sets the number of data bits, 5 to 8.
func WithDataBits(bits int) Option {
	return optFunc(func(cfg *Config) error {
		if bits < 5 || bits > 8 {
			return fmt.Errorf("transport: data bits %d out of range [5, 8]", bits)
		}
		cfg.dataBits = bits

		return nil
	})
}

// WithParity sets the parity mode. Lower-case names are accepted.
func WithParity(p Parity) Option {
	return optFunc(func(cfg *Config) error {
		p = Parity(strings.ToUpper(string(p)))
		switch p {
		case ParityNone, ParityEven, ParityOdd, ParityMark, ParitySpace:
			cfg.parity = p
			return nil
		default:
			return fmt.Errorf("transport: invalid parity %q", string(p))
		}
	})
}

// WithStopBits sets the number of stop bits.
func WithStopBits(sb StopBits) Option {
	return optFunc(func(cfg *Config) error {
		switch sb {
		case StopBits1, StopBits1_5, StopBits2:
			cfg.stopBits = sb
			return nil
		default:
			return fmt.Errorf("transport: invalid stop bits %q", string(sb))
		}
	})
}

// WithReadTimeout sets the per-byte read timeout.
// Long-running commands such as frame integration need a larger value.
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("transport: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithSoftFlow enables or disables XON/XOFF flow control.
func WithSoftFlow(enabled bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.softFlow = enabled
		return nil
	})
}

// WithHardFlow enables or disables RTS/CTS flow control. Enabled by default.
func WithHardFlow(enabled bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.hardFlow = enabled
		return nil
	})
}

// WithLogger sets the logger for the transport.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("transport: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
