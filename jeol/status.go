package jeol

import "strings"

// Status is the two character code that opens every response frame.
type Status string

const (
	StatusOK               Status = "!0"
	StatusBadCommand       Status = "!3"
	StatusInvalidParameter Status = "!4"
	StatusCannotComply     Status = "!5"
)

// statusLen is the length of the status code; statusPrefixLen adds the separator.
const (
	statusLen       = 2
	statusPrefixLen = 3
)

// ParseStatus returns the status code at the start of response.
// Responses shorter than a status code yield the empty Status.
func ParseStatus(response string) Status {
	if len(response) < statusLen {
		return ""
	}

	return Status(response[:statusLen])
}

// IsOK reports whether the status is the success code.
func (s Status) IsOK() bool {
	return s == StatusOK
}

// String describes the status for operators.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBadCommand:
		return "bad command"
	case StatusInvalidParameter:
		return "invalid parameter"
	case StatusCannotComply:
		return "cannot comply"
	case "":
		return "no status"
	default:
		if strings.HasPrefix(string(s), "!") {
			return "unknown status " + string(s)
		}

		return "malformed status " + string(s)
	}
}
