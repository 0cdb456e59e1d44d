package gatewaytypes

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind is the taxonomy of errors this gateway can produce internally,
// reported in Metadata.InternalError, together with an HTTP status under
// the policy in spec.md §6.1 / §7. ErrorKindTransport's status depends on
// which agent call failed and how (404, 500, 502 or 507).
type ErrorKind int

const (
	// ErrorKindHeaderDecoding: non-UTF-8 or otherwise malformed inbound
	// header.
	ErrorKindHeaderDecoding ErrorKind = iota
	// ErrorKindTransport: the Agent Facade failed talking to the backend.
	ErrorKindTransport
	// ErrorKindBodyAssembly: the Range Stream Driver failed to fetch or
	// validate a chunk mid-stream.
	ErrorKindBodyAssembly
	// ErrorKindVerification: certificate or signature verification failed.
	ErrorKindVerification
	// ErrorKindInvalidStatus: the backend returned a status outside [100,599].
	ErrorKindInvalidStatus
	// ErrorKindResponseBuildFailure: a Response Builder invariant broke.
	ErrorKindResponseBuildFailure
	// ErrorKindRangeSetupFailure: a malformed/inconsistent initial
	// Content-Range on a 206 response.
	ErrorKindRangeSetupFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindHeaderDecoding:
		return "HeaderDecoding"
	case ErrorKindTransport:
		return "Transport"
	case ErrorKindBodyAssembly:
		return "BodyAssembly"
	case ErrorKindVerification:
		return "Verification"
	case ErrorKindInvalidStatus:
		return "InvalidStatus"
	case ErrorKindResponseBuildFailure:
		return "ResponseBuildFailure"
	case ErrorKindRangeSetupFailure:
		return "RangeSetupFailure"
	default:
		return "Unknown"
	}
}

// Error is a serializable representation of an error produced anywhere in
// the pipeline. It never carries a raw backend reject message in a header;
// that text, if any, only ever appears in the diagnostic body.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
	ID         string
}

// NewError populates the essential fields of an Error. If err is itself an
// Error, fields left unset on it are filled in rather than nesting.
func NewError(kind ErrorKind, statusCode int, err error) Error {
	var existing Error
	if errors.As(err, &existing) {
		if existing.ID == "" {
			existing.ID = uuid.NewString()
		}
		if existing.StatusCode == 0 {
			existing.StatusCode = statusCode
		}
		return existing
	}
	return Error{
		Kind:       kind,
		StatusCode: statusCode,
		Err:        err,
		ID:         uuid.NewString(),
	}
}

func (e Error) Error() string {
	s := fmt.Sprintf("{id=%s} %s: HTTP %d", e.ID, e.Kind, e.StatusCode)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e Error) Unwrap() error {
	return e.Err
}

// AgentKind discriminates AgentError variants the Agent Facade must
// distinguish because the Pipeline maps them to different HTTP statuses.
type AgentKind int

const (
	AgentCertifiedReject AgentKind = iota
	AgentUncertifiedReject
	AgentResponseSizeExceeded
	AgentHTTPTransport
	AgentOther
)

// RejectCode mirrors the backend's coarse rejection classification; only
// DestinationInvalid changes the outward status (spec.md §6.1: 404).
type RejectCode int

const (
	RejectUnspecified RejectCode = iota
	RejectDestinationInvalid
	RejectCanisterError
	RejectSysFatal
	RejectSysTransient
)

// AgentError is returned by every Agent Facade operation that fails.
type AgentError struct {
	Kind       AgentKind
	Code       RejectCode
	Msg        string
	ErrCode    int
	HTTPStatus int // set only for AgentHTTPTransport
	Payload    []byte
}

func (e AgentError) Error() string {
	return fmt.Sprintf("agent error (%d): %s", e.Kind, e.Msg)
}
