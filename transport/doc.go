// Package transport moves CR-terminated ASCII frames over a character-oriented
// serial channel. It has no knowledge of the microscope protocol.
//
// # Framing
//
// Every outgoing frame is the payload followed by a single carriage return (0x0D),
// with no line feed. Incoming frames are read one byte at a time until a carriage
// return arrives or the port stays quiet for the configured read timeout.
//
// # Timeouts
//
// The read timeout applies per byte: a single missing byte after the configured
// window ends the frame. The bytes collected so far are returned together with an
// error wrapping [ErrTimeout], so a caller can still inspect a partial frame.
// Nothing in this package retries; a slow instrument needs a longer timeout.
//
// # Ports
//
// [Open] opens a serial device through go.bug.st/serial. Any [net.Conn] can be
// used instead through [NewConnPort], which is how tests drive the transport and
// how a serial-over-TCP terminal server can be reached.
package transport
