package user

import "fmt"

// Kind classifies a failed user operation. A Kind matches any *Error of
// the same kind under errors.Is.
type Kind string

const (
	KindInvalidIdentity      Kind = "InvalidIdentity"
	KindExternalServiceError Kind = "ExternalServiceError"
	KindPersistenceFailed    Kind = "PersistenceFailed"
)

func (k Kind) Error() string { return string(k) }

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("user %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("user %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func fail(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
