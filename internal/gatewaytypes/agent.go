package gatewaytypes

import "context"

// Agent is the external RPC transport collaborator (spec.md §1, §4.2). It
// is a thin pass-through: retries, connection pooling, and request signing
// belong to the concrete implementation, never to the Pipeline.
type Agent interface {
	// Query performs an idempotent read against service/method.
	// maxVerificationVersion is the highest response-verification
	// protocol version the caller understands.
	Query(ctx context.Context, service, method string, req HttpRequest, maxVerificationVersion uint16) (HttpResponse, error)

	// UpdateAndWait performs the committed write path; it blocks until
	// the backend has an authoritative result. The gateway applies no
	// internal timeout to this call; callers are expected to bound ctx.
	UpdateAndWait(ctx context.Context, service, method string, req HttpRequest) (HttpResponse, error)

	// StreamCallback follows one link of a callback-streaming chain.
	StreamCallback(ctx context.Context, ref CallbackRef, token Token) (chunk []byte, next Token, err error)

	// RangeQuery is semantically a Query, named separately per spec.md
	// §4.2 for clarity at range-driver call sites.
	RangeQuery(ctx context.Context, service, method string, req HttpRequest, maxVerificationVersion uint16) (HttpResponse, error)

	// RootKey returns the backend platform's root public key, used by
	// the Verifier collaborator.
	RootKey(ctx context.Context) ([]byte, error)
}

// Verifier is the external certificate-verification collaborator (spec.md
// §1, §4.5). Implementations interpret certificate/witness bytes; this
// module never parses them itself.
type Verifier interface {
	// VerifyRequestResponsePair verifies that resp (and its selected
	// headers) are certified by service as a response to req, as of
	// nowNanos, tolerating up to maxSkewNanos of clock drift, against
	// rootKey, requesting at most minVersion's semantics or better.
	VerifyRequestResponsePair(
		ctx context.Context,
		req HttpRequest,
		resp HttpResponse,
		service string,
		nowNanos int64,
		maxSkewNanos int64,
		rootKey []byte,
		minVersion uint16,
	) (VerificationInfo, error)
}
