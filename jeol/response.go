package jeol

import "strings"

// Response is a response frame split into its parts.
type Response struct {
	// Raw is the frame as received, without the terminator.
	Raw string
	// Status is the leading status code.
	Status Status
	// Echo is the first word after the status code, normally the command name.
	Echo string
	// Payload is everything after the echoed word.
	Payload string
}

// ParseResponse splits a raw response frame. It never fails; missing parts are
// left empty so that malformed frames can still be shown to the operator.
func ParseResponse(raw string) Response {
	resp := Response{
		Raw:    raw,
		Status: ParseStatus(raw),
	}
	if len(raw) <= statusPrefixLen {
		return resp
	}

	body := strings.TrimRight(raw[statusPrefixLen:], "\r\n")
	resp.Echo, resp.Payload, _ = strings.Cut(body, " ")

	return resp
}

// IsOK reports whether the response carries the success code.
func (r Response) IsOK() bool {
	return r.Status.IsOK()
}

// cutEcho removes the echoed command from body and returns the value after it.
// The echo must be the whole command followed by the separator or the end of body.
func cutEcho(body, command string) (string, bool) {
	rest, ok := strings.CutPrefix(body, command)
	if !ok {
		return "", false
	}
	if rest == "" {
		return "", true
	}
	if rest[0] != ' ' {
		return "", false
	}

	return strings.TrimRight(rest[1:], "\r\n"), true
}
