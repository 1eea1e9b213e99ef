// Package businessflow contains the core business logic and use cases for link shortening workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Link-related errors
	ErrLinkNotFound        = errors.New("link not found")
	ErrLinkAccessDenied    = errors.New("link access denied")
	ErrOriginalURLRequired = errors.New("original URL is required")
	ErrOriginalURLInvalid  = errors.New("original URL is invalid")
	ErrShortCodeRequired   = errors.New("short code is required")
	ErrCodeSpaceExhausted  = errors.New("short code space exhausted")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkAccessDenied(err error) bool {
	return errors.Is(err, ErrLinkAccessDenied)
}

func IsOriginalURLRequired(err error) bool {
	return errors.Is(err, ErrOriginalURLRequired)
}

func IsOriginalURLInvalid(err error) bool {
	return errors.Is(err, ErrOriginalURLInvalid)
}

func IsShortCodeRequired(err error) bool {
	return errors.Is(err, ErrShortCodeRequired)
}

func IsCodeSpaceExhausted(err error) bool {
	return errors.Is(err, ErrCodeSpaceExhausted)
}
