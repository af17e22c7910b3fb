package sem

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackerfriendly/jeol-buddy/cache"
	"github.com/hackerfriendly/jeol-buddy/logger"
)

// DefaultCachePath is the file the parameter cache is persisted to.
const DefaultCachePath = "scope.json"

// Commander sends commands to the microscope. *jeol.Codec implements it.
type Commander interface {
	Send(ctx context.Context, command string, requireOK bool) (string, error)
	Get(ctx context.Context, command string) (string, error)
	Set(ctx context.Context, param, value string) error
	Prime(ctx context.Context) error
}

// Session drives one microscope through a Commander and keeps its tuned
// parameters in a cache.
//
// A session owns the link exclusively. Operations are synchronous and only one
// runs at a time; starting a second one while the first is still running fails
// with ErrBusy.
type Session struct {
	cmd       Commander
	cache     *cache.Cache
	cachePath string
	logger    logger.Logger

	state   AtomicSessionState
	metrics SessionMetrics
}

// Option is a functional option for configuring a Session.
type Option interface {
	apply(*Session) error
}

type optFunc func(*Session) error

func (f optFunc) apply(s *Session) error { return f(s) }

// WithCachePath sets the file Save persists to and Load restores from.
func WithCachePath(path string) Option {
	return optFunc(func(s *Session) error {
		if path == "" {
			return errors.New("sem: cache path must not be empty")
		}
		s.cachePath = path

		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(s *Session) error {
		if l == nil {
			return errors.New("sem: logger must not be nil")
		}
		s.logger = l

		return nil
	})
}

// NewSession creates a session over cmd. A nil c starts with an empty cache.
func NewSession(cmd Commander, c *cache.Cache, opts ...Option) (*Session, error) {
	if cmd == nil {
		return nil, errors.New("sem: commander is nil")
	}

	if c == nil {
		c = cache.New()
	}

	s := &Session{
		cmd:       cmd,
		cache:     c,
		cachePath: DefaultCachePath,
		logger:    logger.Component("sem"),
	}

	for _, opt := range opts {
		if err := opt.apply(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Cache returns the session's parameter cache.
func (s *Session) Cache() *cache.Cache {
	return s.cache
}

// CachePath returns the file the cache is persisted to.
func (s *Session) CachePath() string {
	return s.cachePath
}

// Phase returns the state of the running operation, or IdleState.
func (s *Session) Phase() SessionState {
	return s.state.Get()
}

// Metrics returns the session's counters.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// State reads all ten parameters from the microscope.
func (s *Session) State(ctx context.Context) (InstrumentState, error) {
	if !s.state.ToReading() {
		return InstrumentState{}, ErrBusy
	}
	defer s.state.ToIdle()

	return s.readState(ctx)
}

// Save reads the microscope, captures its tuned parameters under its current
// operating point and persists the whole cache.
func (s *Session) Save(ctx context.Context) error {
	if !s.state.ToReading() {
		return ErrBusy
	}
	defer s.state.ToIdle()

	st, err := s.readState(ctx)
	if err != nil {
		return err
	}

	s.state.ToCapturing()

	point := st.OperatingPoint()
	s.cache.Capture(point, st.Tuned())
	s.metrics.incCaptureCount()

	if err := s.cache.Persist(s.cachePath); err != nil {
		return fmt.Errorf("sem: save %s: %w", point, err)
	}

	s.logger.Info("sem: settings saved", "point", point.String(), "path", s.cachePath)

	return nil
}

// Load replaces the cache with the persisted one. It never talks to the
// microscope. On failure the cache is left empty and the error reports why.
func (s *Session) Load() error {
	if !s.state.ToRestoring() {
		return ErrBusy
	}
	defer s.state.ToIdle()

	if err := s.cache.Restore(s.cachePath); err != nil {
		s.logger.Warn("sem: starting with an empty cache", "path", s.cachePath, "error", err)
		return err
	}

	s.logger.Info("sem: settings loaded", "path", s.cachePath, "points", s.cache.Len())

	return nil
}

// Update reads the microscope and, if settings were saved for its operating
// point, sends them back in the order GA, ST, STC, OC, OF. It reports whether
// anything was written.
func (s *Session) Update(ctx context.Context) (bool, error) {
	if !s.state.ToReading() {
		return false, ErrBusy
	}
	defer s.state.ToIdle()

	st, err := s.readState(ctx)
	if err != nil {
		return false, err
	}

	point := st.OperatingPoint()
	params, ok := s.cache.Lookup(point)
	if !ok {
		s.logger.Info("sem: no saved settings available", "point", point.String())
		return false, nil
	}

	s.state.ToApplying()

	for _, param := range tunedParams {
		if err := s.set(ctx, param, tunedValue(params, param)); err != nil {
			return false, fmt.Errorf("sem: restore %s at %s: %w", param, point, err)
		}
	}

	s.metrics.incRestoreCount()
	s.logger.Info("sem: settings restored", "point", point.String())

	return true, nil
}

// SafeMode puts the microscope into a known configuration and then restores the
// default function-key bindings.
func (s *Session) SafeMode(ctx context.Context) error {
	if !s.state.ToApplying() {
		return ErrBusy
	}
	defer s.state.ToIdle()

	if err := s.runMacro(ctx, MacroSafeMode, safeModeSequence); err != nil {
		return err
	}

	return s.runMacro(ctx, MacroKeyRemap, keyRemapSequence)
}

// AlignmentMode binds F7 and F8 to lens aperture alignment when enable is set,
// and returns them to their defaults otherwise. The caller keeps track of which
// mode is active.
func (s *Session) AlignmentMode(ctx context.Context, enable bool) error {
	if !s.state.ToApplying() {
		return ErrBusy
	}
	defer s.state.ToIdle()

	if enable {
		return s.runMacro(ctx, MacroAlignmentOn, alignmentOnSequence)
	}

	return s.runMacro(ctx, MacroAlignmentOff, alignmentOffSequence)
}

// RemapKeys restores the default function-key bindings.
func (s *Session) RemapKeys(ctx context.Context) error {
	if !s.state.ToApplying() {
		return ErrBusy
	}
	defer s.state.ToIdle()

	return s.runMacro(ctx, MacroKeyRemap, keyRemapSequence)
}

// Send passes command to the microscope unchanged and returns the raw response.
func (s *Session) Send(ctx context.Context, command string, requireOK bool) (string, error) {
	if !s.state.ToApplying() {
		return "", ErrBusy
	}
	defer s.state.ToIdle()

	response, err := s.cmd.Send(ctx, command, requireOK)
	s.metrics.record(err)

	return response, err
}

// Prime sends a bare empty command to flush the microscope's command buffer.
func (s *Session) Prime(ctx context.Context) error {
	if !s.state.ToApplying() {
		return ErrBusy
	}
	defer s.state.ToIdle()

	err := s.cmd.Prime(ctx)
	s.metrics.record(err)

	return err
}

func (s *Session) readState(ctx context.Context) (InstrumentState, error) {
	var st InstrumentState

	for _, param := range stateParams {
		if err := ctx.Err(); err != nil {
			return InstrumentState{}, err
		}

		value, err := s.cmd.Get(ctx, param)
		s.metrics.record(err)
		if err != nil {
			return InstrumentState{}, fmt.Errorf("sem: read %s: %w", param, err)
		}

		*st.field(param) = value
	}

	return st, nil
}

func (s *Session) set(ctx context.Context, param, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.cmd.Set(ctx, param, value)
	s.metrics.record(err)

	return err
}

// runMacro sends each command with the ok check and stops at the first failure.
func (s *Session) runMacro(ctx context.Context, name string, commands []string) error {
	for i, command := range commands {
		err := ctx.Err()
		if err == nil {
			_, err = s.cmd.Send(ctx, command, true)
			s.metrics.record(err)
		}

		if err != nil {
			s.metrics.incMacroFailCount()
			s.logger.Error("sem: macro stopped", "macro", name, "step", i, "cmd", command, "error", err)

			return &MacroError{Macro: name, Index: i, Command: command, Err: err}
		}
	}

	s.logger.Debug("sem: macro complete", "macro", name, "steps", len(commands))

	return nil
}
