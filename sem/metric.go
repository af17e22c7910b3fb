package sem

import (
	"errors"
	"sync/atomic"

	"github.com/hackerfriendly/jeol-buddy/jeol"
	"github.com/hackerfriendly/jeol-buddy/transport"
)

// SessionMetrics contains atomic metrics for a session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// CommandCount indicates the number of commands sent, including failed ones.
	CommandCount atomic.Uint64
	// RejectedCount indicates the number of responses with a status other than !0.
	RejectedCount atomic.Uint64
	// EchoMismatchCount indicates the number of responses echoing the wrong command.
	EchoMismatchCount atomic.Uint64
	// TimeoutCount indicates the number of commands that got no response in time.
	TimeoutCount atomic.Uint64
	// ErrCount indicates the number of commands that failed for any reason.
	ErrCount atomic.Uint64

	// CaptureCount indicates the number of operating points saved.
	CaptureCount atomic.Uint64
	// RestoreCount indicates the number of Update calls that wrote saved values back.
	RestoreCount atomic.Uint64
	// MacroFailCount indicates the number of macros stopped by a failed step.
	MacroFailCount atomic.Uint64
}

func (m *SessionMetrics) incCommandCount() {
	m.CommandCount.Add(1)
}

func (m *SessionMetrics) incCaptureCount() {
	m.CaptureCount.Add(1)
}

func (m *SessionMetrics) incRestoreCount() {
	m.RestoreCount.Add(1)
}

func (m *SessionMetrics) incMacroFailCount() {
	m.MacroFailCount.Add(1)
}

// record counts one command and classifies its error, if any.
func (m *SessionMetrics) record(err error) {
	m.incCommandCount()
	if err == nil {
		return
	}

	m.ErrCount.Add(1)

	switch {
	case errors.Is(err, jeol.ErrCommandRejected):
		m.RejectedCount.Add(1)
	case errors.Is(err, jeol.ErrEchoMismatch):
		m.EchoMismatchCount.Add(1)
	case errors.Is(err, transport.ErrTimeout):
		m.TimeoutCount.Add(1)
	}
}
