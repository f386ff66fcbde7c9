// Package crypt protects report artifacts with a generated password.
//
// Backends are tried in a fixed order on a fresh credential; the first one
// that succeeds wins. If all of them fail, the run fails: the unprotected
// artifact is removed and never handed back in place of a protected one.
package crypt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/vscan/internal/runlog"
)

// State is a step of the protection state machine.
type State int

const (
	StateNativeApplication State = iota
	StateStructuredFormat
	StateRawByteStream
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateNativeApplication:
		return "NativeApplicationEncryption"
	case StateStructuredFormat:
		return "StructuredFormatEncryption"
	case StateRawByteStream:
		return "RawByteStreamEncryption"
	case StateSuccess:
		return "Success"
	case StateFailure:
		return "Failure"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText logs states by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// stateFor maps a backend to the state it implements, whatever its position
// in the configured chain.
func stateFor(backend string) State {
	switch backend {
	case BackendNative:
		return StateNativeApplication
	case BackendZip:
		return StateStructuredFormat
	case BackendStream:
		return StateRawByteStream
	default:
		return StateFailure
	}
}

// Result describes the finished artifact. Password and Backend are empty
// when encryption was not requested.
type Result struct {
	Path     string
	Password string
	Backend  string

	// Entry is the run log entry recorded for the artifact.
	Entry runlog.Entry
}

// Appender records run log entries.
type Appender interface {
	Append(runlog.Entry) error
}

// Pipeline finalizes artifacts: optional protection, then one run log entry.
type Pipeline struct {
	backends       []Backend
	passwordLength int
	log            Appender
	logger         *slog.Logger
	now            func() time.Time
}

// NewPipeline creates a pipeline trying backends in order.
func NewPipeline(backends []Backend, passwordLength int, log Appender, logger *slog.Logger) *Pipeline {
	if passwordLength <= 0 {
		passwordLength = DefaultPasswordLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		backends:       backends,
		passwordLength: passwordLength,
		log:            log,
		logger:         logger,
		now:            time.Now,
	}
}

// Finalize protects the artifact at src when encrypt is set and appends the
// run log entry describing the outcome. entry carries the run's input and
// options; Finalize fills in output, encryption and time.
//
// On success with encryption, src is deleted (best-effort). If every backend
// fails, src is removed, no log entry is written and the returned error
// matches ErrEncryptionExhausted. A failed log append is returned together
// with the Result, since the artifact itself is complete.
func (p *Pipeline) Finalize(src string, encrypt bool, entry runlog.Entry) (*Result, error) {
	res := &Result{Path: src}

	if encrypt {
		var err error
		res, err = p.protect(src)
		if err != nil {
			if rmErr := os.Remove(src); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				p.logger.Warn("could not remove unprotected artifact", "path", src, "error", rmErr)
			}
			return nil, err
		}
		if err := os.Remove(src); err != nil {
			p.logger.Warn("could not remove unprotected artifact after encryption",
				"path", src,
				"error", err,
			)
		}
	}

	entry.Time = p.now()
	entry.Output = filepath.Base(res.Path)
	entry.Encrypted = encrypt
	entry.Password = res.Password
	entry.Backend = res.Backend
	res.Entry = entry

	if p.log != nil {
		if err := p.log.Append(entry); err != nil {
			return res, fmt.Errorf("record run: %w", err)
		}
	}
	return res, nil
}

// protect runs the state machine on a fresh credential.
func (p *Pipeline) protect(src string) (*Result, error) {
	password, err := GeneratePassword(p.passwordLength)
	if err != nil {
		return nil, err
	}

	exhausted := &ExhaustedError{Artifact: filepath.Base(src)}
	for _, b := range p.backends {
		state := stateFor(b.Name())

		path, err := b.Encrypt(src, password)
		if err == nil {
			p.logger.Debug("artifact protected",
				"state", StateSuccess,
				"backend", b.Name(),
				"path", path,
			)
			return &Result{Path: path, Password: password, Backend: b.Name()}, nil
		}

		var be *BackendError
		if !errors.As(err, &be) {
			be = &BackendError{Backend: b.Name(), Kind: KindFormat, Err: err}
		}
		exhausted.Attempts = append(exhausted.Attempts, be)

		p.logger.Warn("encryption backend failed, falling back",
			"state", state,
			"backend", b.Name(),
			"kind", be.Kind,
			"error", be.Err,
		)
	}

	p.logger.Error("all encryption backends failed", "state", StateFailure, "artifact", src)
	return nil, exhausted
}
