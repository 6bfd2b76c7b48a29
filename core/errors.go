package core

import "fmt"

// Kind classifies an operation failure. Controllers map kinds onto HTTP
// status codes; the core never retries.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindInvalidState
	KindConflict
	KindCapacityExceeded
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a core error of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}
