package domain

import "fmt"

// Status is the outcome class of a single test.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusError
	StatusSkipped
)

// Statuses lists every status in reporting order.
var Statuses = []Status{StatusPassed, StatusFailed, StatusError, StatusSkipped}

var statusNames = [...]string{"passed", "failed", "error", "skipped"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// IsFailure reports whether the status counts against a dimension value.
func (s Status) IsFailure() bool {
	return s == StatusFailed || s == StatusError
}

// ParseStatus resolves a status name as produced by String.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
