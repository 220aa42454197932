package httperr

import (
	"errors"
	"net/http"
)

// Kind classifies a BusinessError and decides its HTTP status.
type Kind int

const (
	KindConflict Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindExternal
	KindInternal
)

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type BusinessError struct {
	Kind Kind
	Code string
	Err  error
}

func (e BusinessError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

// ErrBusiness is a rule violation (slot taken, wrong state, too late).
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindConflict, Code: code}
}

func ErrValidation(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func ErrNotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func ErrForbidden(code string) error {
	return BusinessError{Kind: KindForbidden, Code: code}
}

// ErrExternal wraps a failure of a third party (payment gateway, storage).
func ErrExternal(code string, cause error) error {
	return BusinessError{Kind: KindExternal, Code: code, Err: cause}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
