package jeol

import (
	"net"
	"testing"
	"time"

	"github.com/hackerfriendly/jeol-buddy/logger"
	"github.com/hackerfriendly/jeol-buddy/transport"
)

type scriptedReply struct {
	frame string
	err   error
}

// scriptedTransport records written frames and replays queued replies.
// When the queue is empty ReadFrame behaves like a quiet port.
type scriptedTransport struct {
	writes   []string
	replies  []scriptedReply
	writeErr error
}

func (s *scriptedTransport) reply(frame string) *scriptedTransport {
	s.replies = append(s.replies, scriptedReply{frame: frame})
	return s
}

func (s *scriptedTransport) replyErr(frame string, err error) *scriptedTransport {
	s.replies = append(s.replies, scriptedReply{frame: frame, err: err})
	return s
}

func (s *scriptedTransport) WriteFrame(payload []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, string(payload))

	return nil
}

func (s *scriptedTransport) ReadFrame() ([]byte, error) {
	if len(s.replies) == 0 {
		return nil, transport.ErrTimeout
	}
	r := s.replies[0]
	s.replies = s.replies[1:]

	return []byte(r.frame), r.err
}

func newTestCodec(t *testing.T, ft FrameTransport) *Codec {
	t.Helper()

	c, err := NewCodec(ft, WithLogger(logger.NewPermissiveMockLogger()))
	if err != nil {
		t.Fatalf("newTestCodec: %v", err)
	}

	return c
}

// newPipeCodec creates a Codec over a real LineTransport on net.Pipe().
// Returns the codec and the remote end standing in for the microscope.
func newPipeCodec(t *testing.T) (*Codec, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	cfg, err := transport.NewConfig("pipe", transport.WithReadTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("newPipeCodec: %v", err)
	}
	lt, err := transport.NewLineTransport(transport.NewConnPort(local), cfg)
	if err != nil {
		t.Fatalf("newPipeCodec: %v", err)
	}

	return newTestCodec(t, lt), remote
}
