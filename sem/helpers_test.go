package sem

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackerfriendly/jeol-buddy/cache"
	"github.com/hackerfriendly/jeol-buddy/jeol"
	"github.com/hackerfriendly/jeol-buddy/logger"
	"github.com/hackerfriendly/jeol-buddy/transport"
)

// fakeInstrument answers frames the way the microscope does: a bare parameter id
// echoes the id and its value, "<id> <value>" stores the value, and any other
// command is accepted. Commands in cut get the given bytes and then silence.
type fakeInstrument struct {
	params map[string]string
	reject map[string]jeol.Status
	silent map[string]bool
	cut    map[string]string

	frames  []string
	pending *string
	partial bool
}

func newFakeInstrument() *fakeInstrument {
	return &fakeInstrument{
		params: map[string]string{
			ParamVoltage:         "15KV",
			ParamGunAlignment:    "12 -3",
			ParamLens:            "1",
			ParamOLAstigmatism:   "100 200",
			ParamCLAstigmatism:   "80 90",
			ParamCurrentCoarse:   "10",
			ParamCurrentFine:     "5",
			ParamWorkingDistance: "8MM",
			ParamFocusCoarse:     "1A2",
			ParamFocusFine:       "7F",
		},
		reject: make(map[string]jeol.Status),
		silent: make(map[string]bool),
		cut:    make(map[string]string),
	}
}

func (f *fakeInstrument) WriteFrame(payload []byte) error {
	command := string(payload)
	f.frames = append(f.frames, command)
	f.pending = f.respond(command)
	f.partial = false

	if prefix, ok := f.cut[command]; ok {
		f.pending = &prefix
		f.partial = true
	}

	return nil
}

func (f *fakeInstrument) ReadFrame() ([]byte, error) {
	if f.pending == nil {
		return nil, fmt.Errorf("%w: after 0 bytes without terminator", transport.ErrTimeout)
	}

	response := *f.pending
	f.pending = nil

	if f.partial {
		return []byte(response), fmt.Errorf("%w: after %d bytes without terminator", transport.ErrTimeout, len(response))
	}

	return []byte(response), nil
}

func (f *fakeInstrument) respond(command string) *string {
	reply := func(s string) *string { return &s }

	if command == "" || f.silent[command] {
		return nil
	}

	if status, ok := f.reject[command]; ok {
		return reply(string(status) + " " + command)
	}

	param, value, isSet := strings.Cut(command, " ")
	if !isSet {
		v, ok := f.params[param]
		if !ok {
			return reply(string(jeol.StatusBadCommand) + " " + command)
		}

		return reply(string(jeol.StatusOK) + " " + param + " " + v)
	}

	if _, ok := f.params[param]; ok {
		f.params[param] = value
	}

	return reply(string(jeol.StatusOK))
}

// writes returns the frames that carried a value, in send order.
func (f *fakeInstrument) writes() []string {
	var out []string
	for _, frame := range f.frames {
		if strings.Contains(frame, " ") {
			out = append(out, frame)
		}
	}

	return out
}

func (f *fakeInstrument) reset() {
	f.frames = nil
}

func newTestSession(t *testing.T, f *fakeInstrument, opts ...Option) *Session {
	t.Helper()

	l := logger.NewPermissiveMockLogger()
	codec, err := jeol.NewCodec(f, jeol.WithLogger(l))
	require.NoError(t, err)

	opts = append([]Option{
		WithCachePath(filepath.Join(t.TempDir(), "scope.json")),
		WithLogger(l),
	}, opts...)

	s, err := NewSession(codec, cache.New(), opts...)
	require.NoError(t, err)

	return s
}
