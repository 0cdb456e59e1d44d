package gateway

import "github.com/icgateway/gateway/internal/gatewaytypes"

// HttpHeader is a single (name, value) pair as the wire protocol carries it:
// ordered, and compared case-insensitively but stored as received.
type HttpHeader = gatewaytypes.HttpHeader

// HttpRequest is the inbound request translated into the backend's
// request shape. URL always begins with "/"; scheme, host and authority
// are never carried.
type HttpRequest = gatewaytypes.HttpRequest

// CallbackRef names the backend method a streaming callback continues on.
type CallbackRef = gatewaytypes.CallbackRef

// Token is an opaque continuation handle returned by a streaming callback.
// A nil Token marks the end of a callback chain.
type Token = gatewaytypes.Token

// StreamKind discriminates the StreamingStrategy variants.
type StreamKind = gatewaytypes.StreamKind

const (
	// StreamNone means the reply body is already complete.
	StreamNone = gatewaytypes.StreamNone
	// StreamCallback means the body continues via repeated calls to
	// CallbackRef.MethodName, following Token.
	StreamCallback = gatewaytypes.StreamCallback
)

// StreamingStrategy is the tagged variant the backend uses to declare how
// (if at all) a reply body continues beyond what was returned inline.
type StreamingStrategy = gatewaytypes.StreamingStrategy

// HttpResponse is a reply from the backend (or, for the Range Stream
// Driver, a synthesized per-chunk reply of the same shape).
type HttpResponse = gatewaytypes.HttpResponse

// VerificationInfo is what the Verifier Adapter extracts from the external
// certificate verifier: the protocol version that produced the certificate,
// and, for version >= 2, the response whose headers survive the policy
// filter (nil means the backend certifiably declined to constrain headers).
type VerificationInfo = gatewaytypes.VerificationInfo

// Metadata accompanies every GatewayResponse and records what the pipeline
// actually did, independent of the HTTP status it produced.
type Metadata = gatewaytypes.Metadata

// BodyKind discriminates the Body variants.
type BodyKind = gatewaytypes.BodyKind

const (
	// BodyFull means every byte of the body is already in memory.
	BodyFull = gatewaytypes.BodyFull
	// BodyStream means the body is a lazy, non-restartable sequence of
	// Frames, not yet fully assembled.
	BodyStream = gatewaytypes.BodyStream
)

// Frame is one contiguous slice of body bytes pulled from a Body stream.
type Frame = gatewaytypes.Frame

// FrameSource is pulled by the outward HTTP response writer, one Frame at a
// time, until it returns io.EOF.
type FrameSource = gatewaytypes.FrameSource

// Body is the tagged Full | Stream variant spec.md requires: either the
// whole body is already collected (Full), or it must be consumed
// incrementally from Stream, which is not restartable.
type Body = gatewaytypes.Body

// GatewayResponse is the outward result of running the Pipeline: the HTTP
// status/headers/body to send the client, plus metadata about what the
// pipeline internally did to produce it.
type GatewayResponse = gatewaytypes.GatewayResponse
