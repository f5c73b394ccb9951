package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")

	// Pipeline failure classes. Each one is caught and logged at the
	// boundary of the component that raised it.
	ErrPublishFailure   = errors.New("publish failure")
	ErrDecodeFailure    = errors.New("decode failure")
	ErrConfiguration    = errors.New("configuration error")
	ErrRemoteRejection  = errors.New("remote rejection")
	ErrTransportFailure = errors.New("transport failure")
)

// RemoteRejectionError is returned when the supplier answered with a non-2xx
// status, or with a 2xx body that does not follow the order contract.
type RemoteRejectionError struct {
	StatusCode int
	Body       string
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrRemoteRejection, e.StatusCode, e.Body)
}

func (e *RemoteRejectionError) Unwrap() error {
	return ErrRemoteRejection
}
