package gateway

import "github.com/icgateway/gateway/internal/gatewaytypes"

// ErrorKind is the taxonomy of errors this gateway can produce internally,
// reported in Metadata.InternalError, together with an HTTP status under
// the policy in spec.md §6.1 / §7. ErrorKindTransport's status depends on
// which agent call failed and how (404, 500, 502 or 507).
type ErrorKind = gatewaytypes.ErrorKind

const (
	// ErrorKindHeaderDecoding: non-UTF-8 or otherwise malformed inbound
	// header.
	ErrorKindHeaderDecoding = gatewaytypes.ErrorKindHeaderDecoding
	// ErrorKindTransport: the Agent Facade failed talking to the backend.
	ErrorKindTransport = gatewaytypes.ErrorKindTransport
	// ErrorKindBodyAssembly: the Range Stream Driver failed to fetch or
	// validate a chunk mid-stream.
	ErrorKindBodyAssembly = gatewaytypes.ErrorKindBodyAssembly
	// ErrorKindVerification: certificate or signature verification failed.
	ErrorKindVerification = gatewaytypes.ErrorKindVerification
	// ErrorKindInvalidStatus: the backend returned a status outside [100,599].
	ErrorKindInvalidStatus = gatewaytypes.ErrorKindInvalidStatus
	// ErrorKindResponseBuildFailure: a Response Builder invariant broke.
	ErrorKindResponseBuildFailure = gatewaytypes.ErrorKindResponseBuildFailure
	// ErrorKindRangeSetupFailure: a malformed/inconsistent initial
	// Content-Range on a 206 response.
	ErrorKindRangeSetupFailure = gatewaytypes.ErrorKindRangeSetupFailure
)

// Error is a serializable representation of an error produced anywhere in
// the pipeline. It never carries a raw backend reject message in a header;
// that text, if any, only ever appears in the diagnostic body.
type Error = gatewaytypes.Error

// NewError populates the essential fields of an Error. If err is itself an
// Error, fields left unset on it are filled in rather than nesting.
func NewError(kind ErrorKind, statusCode int, err error) Error {
	return gatewaytypes.NewError(kind, statusCode, err)
}

// AgentKind discriminates AgentError variants the Agent Facade must
// distinguish because the Pipeline maps them to different HTTP statuses.
type AgentKind = gatewaytypes.AgentKind

const (
	AgentCertifiedReject      = gatewaytypes.AgentCertifiedReject
	AgentUncertifiedReject    = gatewaytypes.AgentUncertifiedReject
	AgentResponseSizeExceeded = gatewaytypes.AgentResponseSizeExceeded
	AgentHTTPTransport        = gatewaytypes.AgentHTTPTransport
	AgentOther                = gatewaytypes.AgentOther
)

// RejectCode mirrors the backend's coarse rejection classification; only
// DestinationInvalid changes the outward status (spec.md §6.1: 404).
type RejectCode = gatewaytypes.RejectCode

const (
	RejectUnspecified        = gatewaytypes.RejectUnspecified
	RejectDestinationInvalid = gatewaytypes.RejectDestinationInvalid
	RejectCanisterError      = gatewaytypes.RejectCanisterError
	RejectSysFatal           = gatewaytypes.RejectSysFatal
	RejectSysTransient       = gatewaytypes.RejectSysTransient
)

// AgentError is returned by every Agent Facade operation that fails.
type AgentError = gatewaytypes.AgentError
