package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a domain error for transport mapping and retry decisions.
type Kind int

const (
	// KindValidation covers missing or malformed input, including missing
	// proof images. Recoverable by the user correcting the request.
	KindValidation Kind = iota + 1
	// KindAuthorization covers a wrong party or role attempting an
	// operation. Fatal to the attempted action.
	KindAuthorization
	// KindStateConflict covers transitions attempted from an invalid
	// current state (double approve, confirm after departure). Not
	// retryable; resolved by refetching current state.
	KindStateConflict
	// KindInsufficientFunds covers balance shortfalls at request creation
	// or penalty payment.
	KindInsufficientFunds
	// KindNotFound covers missing entities.
	KindNotFound
)

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Code: "VALIDATION", Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindAuthorization, Code: "NOT_AUTHORIZED", Message: fmt.Sprintf(format, args...)}
}

func StateConflict(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindStateConflict, Code: "STATE_CONFLICT", Message: fmt.Sprintf(format, args...)}
}

func InsufficientFunds(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInsufficientFunds, Code: "INSUFFICIENT_FUNDS", Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or 0 for untyped errors.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return 0
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }
