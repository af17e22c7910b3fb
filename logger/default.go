package logger

import "sync/atomic"

var defLogger atomic.Pointer[Logger]

func init() {
	SetLogger(NewSlog(InfoLevel, false))
}

// SetLogger replaces the package default logger. A nil logger is ignored.
func SetLogger(l Logger) {
	if l != nil {
		defLogger.Store(&l)
	}
}

// GetLogger returns the package default logger, used by components that
// were not given a logger explicitly.
func GetLogger() Logger {
	return *defLogger.Load()
}

// SetLevel sets the minimum level of the default logger.
func SetLevel(level Level) {
	GetLogger().SetLevel(level)
}

// Component returns a child of the default logger tagged with the component name.
func Component(name string) Logger {
	return GetLogger().With("component", name)
}
