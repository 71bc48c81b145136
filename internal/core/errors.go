package core

import "errors"

// Error codes reported to clients.
const (
	ErrCodeValidation     = "validation_error"
	ErrCodeNotJoined      = "not_joined"
	ErrCodeAlreadyJoined  = "already_joined"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeRateLimited    = "rate_limited"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotJoined     = errors.New("not joined")
	ErrAlreadyJoined = errors.New("already joined")
	ErrBadRequest    = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.err
}

// NewCoreError builds a CoreError with an explicit code.
func NewCoreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ToCoreError maps an error wrapping one of the sentinels to its wire code.
func ToCoreError(err error) *CoreError {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce
	}

	code := ErrCodeBadRequest
	switch {
	case errors.Is(err, ErrValidation):
		code = ErrCodeValidation
	case errors.Is(err, ErrNotJoined):
		code = ErrCodeNotJoined
	case errors.Is(err, ErrAlreadyJoined):
		code = ErrCodeAlreadyJoined
	}
	return &CoreError{Code: code, Message: err.Error(), err: err}
}
