package transport

import (
	"io"
	"net"
	"testing"
	"time"
)

const testReadTimeout = 50 * time.Millisecond

// newTestTransport creates a LineTransport backed by the local end of net.Pipe().
// Returns the transport and the remote end for instrument simulation.
func newTestTransport(t *testing.T, opts ...Option) (*LineTransport, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	cfg, err := NewConfig("pipe", append([]Option{WithReadTimeout(testReadTimeout)}, opts...)...)
	if err != nil {
		t.Fatalf("newTestTransport: %v", err)
	}

	lt, err := NewLineTransport(NewConnPort(local), cfg)
	if err != nil {
		t.Fatalf("newTestTransport: %v", err)
	}

	return lt, remote
}

// newPipe creates a net.Pipe pair and registers cleanup.
func newPipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	return local, remote
}

// readExactly reads exactly n bytes from r, failing the test on error.
func readExactly(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Errorf("readExactly: %v", err)
	}

	return buf
}

// mustWrite writes data to w, failing the test on error.
func mustWrite(t *testing.T, w io.Writer, data []byte) {
	t.Helper()

	if _, err := w.Write(data); err != nil {
		t.Errorf("mustWrite: %v", err)
	}
}

// fakeSerialPort records the calls OpenPort makes on a serial device.
type fakeSerialPort struct {
	readTimeout time.Duration
	rts, dtr    bool
	closed      bool
	setRTSErr   error
}

func (p *fakeSerialPort) Read([]byte) (int, error) { return 0, nil }
func (p *fakeSerialPort) Write(b []byte) (int, error) { return len(b), nil }

func (p *fakeSerialPort) Close() error {
	p.closed = true
	return nil
}

func (p *fakeSerialPort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

func (p *fakeSerialPort) SetRTS(rts bool) error {
	if p.setRTSErr != nil {
		return p.setRTSErr
	}
	p.rts = rts

	return nil
}

func (p *fakeSerialPort) SetDTR(dtr bool) error {
	p.dtr = dtr
	return nil
}
