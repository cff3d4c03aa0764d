package linking

import (
	"errors"
	"fmt"
)

// Kind classifies a failed linking operation. A Kind matches any *Error of
// the same kind under errors.Is, so callers can write
// errors.Is(err, linking.KindFundingSourceFailed).
type Kind string

const (
	KindInvalidIdentity      Kind = "InvalidIdentity"
	KindTokenExchangeFailed  Kind = "TokenExchangeFailed"
	KindProcessorTokenFailed Kind = "ProcessorTokenFailed"
	KindFundingSourceFailed  Kind = "FundingSourceFailed"
	KindPersistenceFailed    Kind = "PersistenceFailed"
	KindExternalServiceError Kind = "ExternalServiceError"
)

func (k Kind) Error() string { return string(k) }

var (
	ErrMissingIdentity     = errors.New("identity is required")
	ErrMissingCustomer     = errors.New("identity has no payments customer")
	ErrMissingPublicToken  = errors.New("public token is required")
	ErrNoAccounts          = errors.New("item has no accounts")
	ErrEmptyFundingSource  = errors.New("funding source url is empty")
	ErrEmptyProcessorToken = errors.New("processor token is empty")
	ErrIncompleteExchange  = errors.New("token exchange returned no access token or item id")
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("linking %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("linking %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind carried by err, or "" if err is not a linking error.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return ""
}

func fail(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
