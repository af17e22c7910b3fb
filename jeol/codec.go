package jeol

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hackerfriendly/jeol-buddy/logger"
	"github.com/hackerfriendly/jeol-buddy/transport"
)

// FrameTransport moves whole frames to and from the microscope.
// *transport.LineTransport implements it.
type FrameTransport interface {
	WriteFrame(payload []byte) error
	ReadFrame() ([]byte, error)
}

// Codec sends commands and validates their responses.
//
// This type is NOT goroutine-safe; each command is a write followed by a read
// on a shared link, so exchanges must not interleave.
type Codec struct {
	transport FrameTransport
	logger    logger.Logger
}

// Option is a functional option for configuring a Codec.
type Option interface {
	apply(*Codec) error
}

type optFunc func(*Codec) error

func (f optFunc) apply(c *Codec) error { return f(c) }

// WithLogger sets the logger for the codec.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(c *Codec) error {
		if l == nil {
			return errors.New("jeol: logger must not be nil")
		}
		c.logger = l

		return nil
	})
}

// NewCodec creates a Codec over t.
func NewCodec(t FrameTransport, opts ...Option) (*Codec, error) {
	if t == nil {
		return nil, errors.New("jeol: transport is nil")
	}

	c := &Codec{
		transport: t,
		logger:    logger.Component("jeol"),
	}

	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Send writes command exactly as given and returns the response frame unmodified.
//
// If requireOK is set and the response does not start with !0, Send fails with a
// *CommandError of kind KindRejected. A timeout with nothing received fails with
// an error wrapping transport.ErrTimeout when requireOK is set, and returns the
// empty response otherwise. A partial frame cut short by a timeout is status
// checked like a complete one, and if that check passes (or is not required) it
// is returned together with an error wrapping transport.ErrTimeout.
func (c *Codec) Send(ctx context.Context, command string, requireOK bool) (string, error) {
	response, partial, err := c.exchange(ctx, command, requireOK)
	if err != nil {
		return response, err
	}

	if requireOK && !strings.HasPrefix(response, string(StatusOK)) {
		return response, newRejectedError(command, response)
	}

	if partial {
		return response, incompleteError(command, response)
	}

	return response, nil
}

// Get sends command, requires the !0 status and returns the value that follows
// the echoed command. A reply echoing any other command fails with a
// *CommandError of kind KindEchoMismatch. A reply cut short by a timeout never
// yields a value: after the status and echo checks it fails with an error
// wrapping transport.ErrTimeout.
func (c *Codec) Get(ctx context.Context, command string) (string, error) {
	response, partial, err := c.exchange(ctx, command, true)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(response, string(StatusOK)) {
		return "", newRejectedError(command, response)
	}

	var body string
	if len(response) > statusPrefixLen {
		body = response[statusPrefixLen:]
	}

	value, ok := cutEcho(body, command)
	if !ok {
		c.logger.Warn("jeol: echo mismatch", "cmd", command, "response", response)
		return "", newEchoMismatchError(command, response)
	}

	if partial {
		return "", incompleteError(command, response)
	}

	return value, nil
}

// Set sends "<param> <value>" and requires the !0 status.
func (c *Codec) Set(ctx context.Context, param, value string) error {
	_, err := c.Send(ctx, param+" "+value, true)
	return err
}

// Prime sends the bare empty command without checking the status, to flush the
// microscope's command buffer at the start of a session or after an echo mismatch.
// Silence and stray partial output are both tolerated.
func (c *Codec) Prime(ctx context.Context) error {
	_, err := c.Send(ctx, "", false)
	if errors.Is(err, transport.ErrTimeout) {
		return nil
	}

	return err
}

// exchange writes command and reads one frame. partial reports a frame cut short
// by a timeout; err is set only for failures that leave nothing to check.
func (c *Codec) exchange(ctx context.Context, command string, requireOK bool) (response string, partial bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	if err := c.transport.WriteFrame([]byte(command)); err != nil {
		return "", false, fmt.Errorf("jeol: send %q: %w", command, err)
	}

	frame, err := c.transport.ReadFrame()
	response = string(frame)

	if err != nil {
		switch {
		case !errors.Is(err, transport.ErrTimeout):
			return response, false, fmt.Errorf("jeol: response to %q: %w", command, err)
		case len(frame) > 0:
			c.logger.Warn("jeol: partial response before timeout", "cmd", command, "response", response)
			return response, true, nil
		case requireOK:
			return "", false, fmt.Errorf("jeol: no response to %q: %w", command, err)
		default:
			c.logger.Debug("jeol: no response", "cmd", command)
			return "", false, nil
		}
	}

	c.logger.Debug("jeol: exchange", "cmd", command, "response", response)

	return response, false, nil
}

func incompleteError(command, response string) error {
	return fmt.Errorf("jeol: incomplete response %q to %q: %w", response, command, transport.ErrTimeout)
}
