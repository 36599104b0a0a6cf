// Package apperr provides the categorised error type shared by every ledger
// component. Sentinels are compared by identity, so callers use errors.Is.
package apperr

import "errors"

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthorization
	KindState
	KindValue
	KindIdentity
	KindDuplicateAction
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindValue:
		return "value"
	case KindIdentity:
		return "identity"
	case KindDuplicateAction:
		return "duplicate_action"
	default:
		return "internal"
	}
}

// Error is a machine-readable ledger failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func (e *Error) Error() string { return e.Message }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain, or "INTERNAL".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}

// Common sentinels used by more than one aggregate.
var (
	ErrZeroAmount      = New(KindValue, "ZERO_AMOUNT", "amount must be greater than zero")
	ErrNotActiveMember = New(KindAuthorization, "NOT_ACTIVE_MEMBER", "caller is not an active member")
)
