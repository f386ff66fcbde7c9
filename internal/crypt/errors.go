package crypt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEncryptionExhausted is matched by every *ExhaustedError.
var ErrEncryptionExhausted = errors.New("all encryption backends failed")

// FailureKind classifies why a backend could not protect an artifact.
type FailureKind string

const (
	// KindCapability: the backend cannot handle this artifact or platform.
	KindCapability FailureKind = "capability"
	// KindFormat: the backend rejected or failed to produce the format.
	KindFormat FailureKind = "format"
	// KindIO: reading the source or writing the output failed.
	KindIO FailureKind = "io"
)

// BackendError is one backend's failure.
type BackendError struct {
	Backend string
	Kind    FailureKind
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func capability(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: KindCapability, Err: err}
}

func format(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: KindFormat, Err: err}
}

func ioFailure(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: KindIO, Err: err}
}

// ExhaustedError is returned when every backend failed. Attempts holds the
// failures in the order the backends were tried.
type ExhaustedError struct {
	Artifact string
	Attempts []*BackendError
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		msgs[i] = a.Error()
	}
	return fmt.Sprintf("%v for %s: %s", ErrEncryptionExhausted, e.Artifact, strings.Join(msgs, "; "))
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrEncryptionExhausted
}
