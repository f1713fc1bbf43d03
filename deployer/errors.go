package deployer

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies why a sync did not complete.
type Kind int

const (
	// Unauthorized means the auth key was missing or wrong
	Unauthorized Kind = iota + 1
	// Forbidden means cleaning was requested but no deploy key is configured
	Forbidden
	// UnknownRepository means the repository is not in the configuration
	UnknownRepository
	// BadRequest means the trigger could not be interpreted
	BadRequest
	// AuthTokenError means no access token could be obtained
	AuthTokenError
	// TransferError means the archive could not be downloaded
	TransferError
	// ExtractionFailed means the download is not a usable archive
	ExtractionFailed
	// MalformedArchive means the archive has no top-level folder
	MalformedArchive
	// DeployIncomplete means copying into the destination failed part way
	DeployIncomplete
	// NotSupported means the trigger has no implementation yet
	NotSupported
)

var kindNames = map[Kind]string{
	Unauthorized:      "Unauthorized",
	Forbidden:         "Forbidden",
	UnknownRepository: "UnknownRepository",
	BadRequest:        "BadRequest",
	AuthTokenError:    "AuthTokenError",
	TransferError:     "TransferError",
	ExtractionFailed:  "ExtractionFailed",
	MalformedArchive:  "MalformedArchive",
	DeployIncomplete:  "DeployIncomplete",
	NotSupported:      "NotSupported",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// StatusCode is the HTTP status reported for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case UnknownRepository:
		return http.StatusNotFound
	case BadRequest:
		return http.StatusBadRequest
	case AuthTokenError, TransferError:
		return http.StatusBadGateway
	case ExtractionFailed, MalformedArchive:
		return http.StatusUnprocessableEntity
	case NotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by Run when a sync aborts.
type Error struct {
	Kind       Kind
	Repository string
	// Msg is the line shown to the caller
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusCode maps the result of Run to an HTTP status.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if k := KindOf(err); k != 0 {
		return k.StatusCode()
	}
	return http.StatusInternalServerError
}
