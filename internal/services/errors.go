package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Every error a service returns wraps exactly one of these.
// Handlers map them to HTTP status codes.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrBadInput        = errors.New("bad input")
	ErrInternal        = errors.New("internal error")
)

// notFoundOr turns gorm.ErrRecordNotFound into ErrNotFound and anything else
// into ErrInternal.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return internal(err)
}

func internal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// isTyped reports whether err already carries one of the sentinels above.
func isTyped(err error) bool {
	for _, target := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrBadInput, ErrInternal} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// asInternal passes typed errors through and wraps everything else.
func asInternal(err error) error {
	if err == nil || isTyped(err) {
		return err
	}
	return internal(err)
}
