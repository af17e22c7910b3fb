// Package jeol implements the command/response codec of the JEOL SEM external
// control protocol.
//
// Every command is one frame of ASCII text. The microscope answers each command
// with exactly one frame made of a two character status code, a separator, the
// echoed command and the command's value:
//
//	>> ACC
//	<< !0 ACC 15KV
//
// Status codes:
//
//   - !0 success
//   - !3 bad command
//   - !4 invalid parameter
//   - !5 cannot comply, e.g. selecting a detector while the beam is off
//
// Any code other than !0 is reported as a [CommandError] of kind [KindRejected]
// that keeps the raw code and response for the operator. A reply whose echo names
// a different command is reported as [KindEchoMismatch]; it means the link is out
// of step, typically because a stale frame is still in the channel. Sending the
// bare empty command with [Codec.Prime] resynchronises the link.
//
// The codec never retries.
package jeol
