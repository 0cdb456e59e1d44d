// Package gatewaytypes holds the wire/protocol types, constants, error
// taxonomy, collaborator interfaces, and package logger shared between the
// root gateway package and its internal pipeline stages. It exists only to
// avoid an import cycle between gateway and internal/{bodycollect,
// rangestream, respbuild, translate, verify}; the root gateway package
// re-exports everything here under the same names via type aliases.
package gatewaytypes

import "net/http"

// HttpHeader is a single (name, value) pair as the wire protocol carries it:
// ordered, and compared case-insensitively but stored as received.
type HttpHeader struct {
	Name  string
	Value string
}

// HttpRequest is the inbound request translated into the backend's
// request shape. URL always begins with "/"; scheme, host and authority
// are never carried.
type HttpRequest struct {
	Method  string
	URL     string
	Headers []HttpHeader
	Body    []byte
}

// Header returns the first value for name, matched case-insensitively, and
// whether it was present.
func (r HttpRequest) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if http.CanonicalHeaderKey(h.Name) == http.CanonicalHeaderKey(name) {
			return h.Value, true
		}
	}
	return "", false
}

// CallbackRef names the backend method a streaming callback continues on.
type CallbackRef struct {
	ServicePrincipal string
	MethodName       string
}

// Token is an opaque continuation handle returned by a streaming callback.
// A nil Token marks the end of a callback chain.
type Token []byte

// StreamKind discriminates the StreamingStrategy variants.
type StreamKind int

const (
	// StreamNone means the reply body is already complete.
	StreamNone StreamKind = iota
	// StreamCallback means the body continues via repeated calls to
	// CallbackRef.MethodName, following Token.
	StreamCallback
)

// StreamingStrategy is the tagged variant the backend uses to declare how
// (if at all) a reply body continues beyond what was returned inline.
type StreamingStrategy struct {
	Kind         StreamKind
	CallbackRef  CallbackRef
	InitialToken Token
}

// HttpResponse is a reply from the backend (or, for the Range Stream
// Driver, a synthesized per-chunk reply of the same shape).
type HttpResponse struct {
	StatusCode        uint16
	Headers           []HttpHeader
	Body              []byte
	Upgrade           bool
	StreamingStrategy *StreamingStrategy
}

// Header returns the first value for name, matched case-insensitively.
func (r HttpResponse) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if http.CanonicalHeaderKey(h.Name) == http.CanonicalHeaderKey(name) {
			return h.Value, true
		}
	}
	return "", false
}

// VerificationInfo is what the Verifier Adapter extracts from the external
// certificate verifier: the protocol version that produced the certificate,
// and, for version >= 2, the response whose headers survive the policy
// filter (nil means the backend certifiably declined to constrain headers).
type VerificationInfo struct {
	VerificationVersion uint16
	CertifiedResponse   *HttpResponse
}

// Metadata accompanies every GatewayResponse and records what the pipeline
// actually did, independent of the HTTP status it produced.
type Metadata struct {
	UpgradedToUpdateCall        bool
	ResponseVerificationVersion *uint16
	InternalError               *ErrorKind
}

// BodyKind discriminates the Body variants.
type BodyKind int

const (
	// BodyFull means every byte of the body is already in memory.
	BodyFull BodyKind = iota
	// BodyStream means the body is a lazy, non-restartable sequence of
	// Frames, not yet fully assembled.
	BodyStream
)

// Frame is one contiguous slice of body bytes pulled from a Body stream.
type Frame struct {
	Data []byte
}

// FrameSource is pulled by the outward HTTP response writer, one Frame at a
// time, until it returns io.EOF.
type FrameSource interface {
	Next() (Frame, error)
}

// Body is the tagged Full | Stream variant spec.md requires: either the
// whole body is already collected (Full), or it must be consumed
// incrementally from Stream, which is not restartable.
type Body struct {
	Kind   BodyKind
	Full   []byte
	Stream FrameSource
}

// GatewayResponse is the outward result of running the Pipeline: the HTTP
// status/headers/body to send the client, plus metadata about what the
// pipeline internally did to produce it.
type GatewayResponse struct {
	Status   int
	Headers  []HttpHeader
	Body     Body
	Metadata Metadata
}
