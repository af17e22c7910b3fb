package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/hackerfriendly/jeol-buddy/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// stubOpener replaces serialOpener for the duration of the test and records
// the arguments it was called with.
func stubOpener(t *testing.T, port Port, openErr error) (*string, **serial.Mode) {
	t.Helper()

	var (
		gotName string
		gotMode *serial.Mode
	)

	orig := serialOpener
	serialOpener = func(name string, mode *serial.Mode) (Port, error) {
		gotName = name
		gotMode = mode
		if openErr != nil {
			return nil, openErr
		}

		return port, nil
	}
	t.Cleanup(func() { serialOpener = orig })

	return &gotName, &gotMode
}

func TestOpenPort_Defaults(t *testing.T) {
	fake := &fakeSerialPort{}
	name, mode := stubOpener(t, fake, nil)

	cfg, err := NewConfig("/dev/ttyUSB1")
	require.NoError(t, err)

	port, err := OpenPort(cfg)
	require.NoError(t, err)
	assert.Same(t, fake, port)

	assert.Equal(t, "/dev/ttyUSB1", *name)
	require.NotNil(t, *mode)
	assert.Equal(t, 2400, (*mode).BaudRate)
	assert.Equal(t, 8, (*mode).DataBits)
	assert.Equal(t, serial.NoParity, (*mode).Parity)
	assert.Equal(t, serial.OneStopBit, (*mode).StopBits)

	assert.Equal(t, DefaultReadTimeout, fake.readTimeout)
	assert.True(t, fake.rts, "hardware flow control asserts RTS")
	assert.True(t, fake.dtr, "hardware flow control asserts DTR")
}

func TestOpenPort_ModeMapping(t *testing.T) {
	tests := []struct {
		parity     Parity
		stopBits   StopBits
		wantParity serial.Parity
		wantStop   serial.StopBits
	}{
		{ParityEven, StopBits1, serial.EvenParity, serial.OneStopBit},
		{ParityOdd, StopBits2, serial.OddParity, serial.TwoStopBits},
		{ParityMark, StopBits1_5, serial.MarkParity, serial.OnePointFiveStopBits},
		{ParitySpace, StopBits1, serial.SpaceParity, serial.OneStopBit},
	}

	for _, tt := range tests {
		t.Run(string(tt.parity)+string(tt.stopBits), func(t *testing.T) {
			_, mode := stubOpener(t, &fakeSerialPort{}, nil)

			cfg, err := NewConfig("COM3", WithParity(tt.parity), WithStopBits(tt.stopBits), WithHardFlow(false))
			require.NoError(t, err)

			_, err = OpenPort(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantParity, (*mode).Parity)
			assert.Equal(t, tt.wantStop, (*mode).StopBits)
		})
	}
}

func TestOpenPort_NoHardFlowLeavesLines(t *testing.T) {
	fake := &fakeSerialPort{}
	stubOpener(t, fake, nil)

	cfg, err := NewConfig("COM1", WithHardFlow(false))
	require.NoError(t, err)

	_, err = OpenPort(cfg)
	require.NoError(t, err)
	assert.False(t, fake.rts)
	assert.False(t, fake.dtr)
}

func TestOpenPort_SoftFlowWarns(t *testing.T) {
	stubOpener(t, &fakeSerialPort{}, nil)

	l := logger.NewMockLogger()
	l.On("Debug", mock.Anything, mock.Anything).Return()
	l.On("Warn", "transport: software flow control is not supported by the serial driver", mock.Anything).Return().Once()

	cfg, err := NewConfig("COM1", WithSoftFlow(true), WithLogger(l))
	require.NoError(t, err)

	_, err = OpenPort(cfg)
	require.NoError(t, err)
	l.AssertExpectations(t)
}

func TestOpenPort_OpenError(t *testing.T) {
	openErr := errors.New("no such device")
	stubOpener(t, nil, openErr)

	cfg, err := NewConfig("/dev/missing")
	require.NoError(t, err)

	port, err := OpenPort(cfg)
	require.Error(t, err)
	assert.Nil(t, port)
	assert.ErrorIs(t, err, openErr)
	assert.Contains(t, err.Error(), "/dev/missing")
}

func TestOpenPort_ModemControlErrorClosesPort(t *testing.T) {
	fake := &fakeSerialPort{setRTSErr: errors.New("ioctl failed")}
	stubOpener(t, fake, nil)

	cfg, err := NewConfig("/dev/ttyS1")
	require.NoError(t, err)

	_, err = OpenPort(cfg)
	require.Error(t, err)
	assert.True(t, fake.closed)
}

func TestOpen_ReturnsTransport(t *testing.T) {
	fake := &fakeSerialPort{}
	stubOpener(t, fake, nil)

	cfg, err := NewConfig("/dev/ttyS0", WithReadTimeout(time.Second))
	require.NoError(t, err)

	lt, err := Open(cfg)
	require.NoError(t, err)
	require.NotNil(t, lt)
	assert.Equal(t, time.Second, fake.readTimeout)

	require.NoError(t, lt.Close())
	assert.True(t, fake.closed)
}

func TestConnPort_RejectsNonPositiveTimeout(t *testing.T) {
	local, _ := newPipe(t)

	port := NewConnPort(local)
	require.Error(t, port.SetReadTimeout(0))
	require.NoError(t, port.SetReadTimeout(time.Second))
}
