// Package gateway implements the response assembly and verification
// pipeline of an HTTP gateway in front of a replicated, certificate-backed
// compute platform. It translates an inbound HTTP request into one or more
// RPC calls against a named backend service, assembles the (possibly
// chunked) response body, cryptographically verifies the bytes and headers
// that the backend certifies, and produces a single outward HTTP response.
//
// The gateway never makes a network call itself and never performs
// cryptographic verification itself: both are external collaborators
// reached through the Agent and Verifier interfaces. This package owns only
// the orchestration, the chunking/streaming state machines, and the
// header/status policy that sits between them.
package gateway
