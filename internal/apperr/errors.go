// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Callers match kinds with errors.Is against the sentinel values
// or with KindOf.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindNotFound
	KindUpstream
	KindCorruptData
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindCorruptData:
		return "corrupt_data"
	case KindToken:
		return "token"
	default:
		return "server"
	}
}

var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrUpstream       = errors.New("analysis service error")
	ErrCorruptData    = errors.New("corrupt result data")
	ErrToken          = errors.New("token error")
	ErrServer         = errors.New("server error")
)

var sentinels = map[Kind]error{
	KindServer:         ErrServer,
	KindValidation:     ErrValidation,
	KindConflict:       ErrConflict,
	KindAuthentication: ErrAuthentication,
	KindNotFound:       ErrNotFound,
	KindUpstream:       ErrUpstream,
	KindCorruptData:    ErrCorruptData,
	KindToken:          ErrToken,
}

// Error carries a public Message that is safe to show to clients and an
// optional internal cause that is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNotFound) and friends work for every *Error.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) error {
	return newError(KindValidation, msg, nil)
}

func Conflict(msg string) error {
	return newError(KindConflict, msg, nil)
}

func Authentication(msg string) error {
	return newError(KindAuthentication, msg, nil)
}

func NotFound(msg string) error {
	return newError(KindNotFound, msg, nil)
}

func Upstream(cause error) error {
	return newError(KindUpstream, "analysis service failed", cause)
}

func CorruptData(cause error) error {
	return newError(KindCorruptData, "corrupt result file", cause)
}

func Token(cause error) error {
	return newError(KindToken, "token generation failed", cause)
}

func Server(cause error) error {
	return newError(KindServer, "internal server error", cause)
}

// KindOf reports the kind of err. Anything that is not an *Error is a
// server error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Wrap classifies err as a server error unless it already carries a kind.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Server(err)
}

// PublicMessage returns the client-facing message for err. 500-class kinds
// always yield their fixed message, never the cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindUpstream:
		return "Error uploading video or saving result"
	case KindCorruptData:
		return "Corrupt result file"
	case KindToken, KindServer:
		return "internal server error"
	}
	return e.Message
}
