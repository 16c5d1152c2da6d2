package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDomain      = errors.New("invalid domain")
	ErrEmptyValue         = errors.New("empty value")
	ErrRequired           = errors.New("required field missing")
	ErrInvalidPolicy      = errors.New("invalid stale record policy")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidTTL         = errors.New("invalid ttl")
	ErrMissingSecret      = errors.New("missing secret reference")
	ErrMissingCredential  = errors.New("missing credential")
	ErrUnsupportedBackend = errors.New("unsupported backend")

	ErrConfigReadFailed  = errors.New("config read failed")
	ErrConfigParseFailed = errors.New("config parse failed")

	ErrStateReadFailed    = errors.New("state read failed")
	ErrStateWriteFailed   = errors.New("state write failed")
	ErrStateSerializeFail = errors.New("state serialization failed")

	ErrBackend          = errors.New("DNS backend operation failed")
	ErrZoneNotFound     = errors.New("DNS zone not found")
	ErrRecordNotFound   = errors.New("DNS record not found")
	ErrStaleChallenge   = errors.New("challenge record holds a different proof")
	ErrLookupFailed     = errors.New("TXT lookup failed")
	ErrUnexpectedAnswer = errors.New("unexpected DNS answer")
)

func RequiredField(field string) error {
	return fmt.Errorf("%w: %s", ErrRequired, field)
}

func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func WrapEntity(entity, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s[%s]: %w", entity, name, err)
}

// BackendError is returned by every DNS backend for transport, authentication
// and provider-reported failures. Code and Message are filled in when the
// provider SDK exposes them.
type BackendError struct {
	Backend string
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Backend, e.Op)
	switch {
	case e.Code != "" && e.Message != "":
		msg += fmt.Sprintf(": [%s] %s", e.Code, e.Message)
	case e.Code != "":
		msg += fmt.Sprintf(": [%s]", e.Code)
	case e.Message != "":
		msg += ": " + e.Message
	case e.Err != nil:
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

func NewBackendError(backend, op string, err error) *BackendError {
	return &BackendError{Backend: backend, Op: op, Err: err}
}
