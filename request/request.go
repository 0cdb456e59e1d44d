// Package request implements the Public Request API (spec.md §4.8): a
// one-shot builder that configures an agent and a translated request, then
// runs the Pipeline.
package request

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/icgateway/gateway"
	"github.com/icgateway/gateway/gatewayconfig"
)

// ErrAlreadySent is returned by Send when called more than once on the
// same Builder. spec.md §4.8: "the builder is one-shot; reusing it after
// send is not supported." The original Rust builder enforces this by
// consuming self on send(); Go has no move semantics, so this is modeled
// as an explicit error (see SPEC_FULL.md, supplemented feature 2).
var ErrAlreadySent = errors.New("request: builder already sent")

// Builder is the public, fluent entry point into the gateway.
type Builder struct {
	agent                 gateway.Agent
	verifier              gateway.Verifier
	service               string
	method                string
	httpRequest           *http.Request
	body                  []byte
	allowSkipVerification bool
	config                gatewayconfig.Config
	sent                  bool
}

// New starts a Builder for service, talking to method on the backend
// (conventionally "http_request"). The protocol ceilings default to
// gatewayconfig.Default(); call WithConfig to load them from TOML instead.
func New(agent gateway.Agent, verifier gateway.Verifier, service, method string) *Builder {
	return &Builder{agent: agent, verifier: verifier, service: service, method: method, config: gatewayconfig.Default()}
}

// WithConfig overrides the protocol ceilings (chunk budgets, certificate
// time skew) the Pipeline runs with; see gatewayconfig.Load.
func (b *Builder) WithConfig(cfg gatewayconfig.Config) *Builder {
	b.config = cfg
	return b
}

// WithServiceID overrides the target service principal.
func (b *Builder) WithServiceID(service string) *Builder {
	b.service = service
	return b
}

// WithRequest sets the inbound HTTP request (and its already-read body) to
// translate and dispatch.
func (b *Builder) WithRequest(req *http.Request, body []byte) *Builder {
	b.httpRequest = req
	b.body = body
	return b
}

// UnsafeAllowSkipVerification opts in to skipping certificate verification
// for raw-domain responses. Default false; spec.md §4.8 documents this as
// unsafe — only sound when the backend response is not meant to be
// certified at all.
func (b *Builder) UnsafeAllowSkipVerification(allow bool) *Builder {
	b.allowSkipVerification = allow
	return b
}

// Send runs the Pipeline against the configured request and returns the
// GatewayResponse. The builder is one-shot: a second call returns
// ErrAlreadySent without touching the network.
func (b *Builder) Send(ctx context.Context) (gateway.GatewayResponse, error) {
	if b.sent {
		return gateway.GatewayResponse{}, ErrAlreadySent
	}
	b.sent = true

	if b.httpRequest == nil {
		return gateway.GatewayResponse{}, errors.New("request: WithRequest must be called before Send")
	}

	pipeline := gateway.Pipeline{
		Agent:           b.agent,
		Verifier:        b.verifier,
		Service:         b.service,
		Method:          b.method,
		AllowSkipVerify: b.allowSkipVerification,
		MaxSkewNanos:    b.config.CertificateTimeSkewNanos(),
		MinVersion:      gateway.MinVerificationVersion,
		NowNanos:        func() int64 { return time.Now().UnixNano() },
		Limits:          b.config.Limits(),
	}

	return pipeline.Run(ctx, b.httpRequest, b.body), nil
}
