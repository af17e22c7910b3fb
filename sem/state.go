package sem

import "sync/atomic"

// SessionState is the phase of the operation a session is running.
type SessionState uint32

const (
	IdleState SessionState = iota
	ReadingState
	ApplyingState
	CapturingState
	RestoringState
)

func (s SessionState) String() string {
	switch s {
	case IdleState:
		return "Idle"
	case ReadingState:
		return "Reading"
	case ApplyingState:
		return "Applying"
	case CapturingState:
		return "Capturing"
	case RestoringState:
		return "Restoring"
	default:
		return "Unknown"
	}
}

// AtomicSessionState holds a SessionState with compare-and-swap transitions:
//
//	Idle -> Reading -> Applying | Capturing -> Idle
//	Idle -> Applying -> Idle  (macro sequences and raw commands)
//	Idle -> Restoring -> Idle (loading the cache file)
type AtomicSessionState struct {
	state atomic.Uint32
}

func (st *AtomicSessionState) String() string {
	return st.Get().String()
}

// Get returns the current state.
func (st *AtomicSessionState) Get() SessionState {
	return SessionState(st.state.Load())
}

// Set sets the state unconditionally.
func (st *AtomicSessionState) Set(state SessionState) {
	st.state.Store(uint32(state))
}

// IsIdle reports whether no operation is running.
func (st *AtomicSessionState) IsIdle() bool {
	return st.Get() == IdleState
}

// ToReading starts an operation that reads the instrument.
func (st *AtomicSessionState) ToReading() bool {
	return st.state.CompareAndSwap(uint32(IdleState), uint32(ReadingState))
}

// ToApplying moves from Reading, or starts a write-only operation from Idle.
func (st *AtomicSessionState) ToApplying() bool {
	if st.state.CompareAndSwap(uint32(ReadingState), uint32(ApplyingState)) {
		return true
	}

	return st.state.CompareAndSwap(uint32(IdleState), uint32(ApplyingState))
}

// ToCapturing moves from Reading once the instrument state is known.
func (st *AtomicSessionState) ToCapturing() bool {
	return st.state.CompareAndSwap(uint32(ReadingState), uint32(CapturingState))
}

// ToRestoring starts a cache file load, which does not touch the instrument.
func (st *AtomicSessionState) ToRestoring() bool {
	return st.state.CompareAndSwap(uint32(IdleState), uint32(RestoringState))
}

// ToIdle ends the running operation.
func (st *AtomicSessionState) ToIdle() {
	st.state.Store(uint32(IdleState))
}
