// Package sem synchronizes a JEOL scanning electron microscope with a cache of
// beam-tuning parameters.
//
// A Session reads the microscope's full state, saves the tuned parameters (gun
// alignment, astigmatism and focus) under the current operating point, and
// writes them back when the microscope returns to a point it has seen before.
// It also runs the fixed command sequences for safe mode, function-key remapping
// and aperture alignment.
//
// # Operation phases
//
// Each operation moves the session through
//
//	Idle -> Reading -> Applying | Capturing -> Idle
//
// Loading the cache file runs as Idle -> Restoring -> Idle and never talks to
// the microscope.
//
// and always ends in Idle, whether it succeeded or not. Only one operation runs
// at a time; the session owns the serial link for its whole lifetime.
//
// # Failures
//
// The first failed command stops the operation and its error is returned as is,
// or inside a *MacroError naming the step for macro sequences. Commands already
// sent are not undone. Use errors.Is with jeol.ErrCommandRejected,
// jeol.ErrEchoMismatch or transport.ErrTimeout to tell the causes apart.
package sem
