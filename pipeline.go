package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/icgateway/gateway/internal/bodycollect"
	"github.com/icgateway/gateway/internal/rangestream"
	"github.com/icgateway/gateway/internal/respbuild"
	"github.com/icgateway/gateway/internal/translate"
	"github.com/icgateway/gateway/internal/verify"
)

// Pipeline orchestrates the Header/URL Translator, Agent Facade, Body
// Collector, Verifier Adapter, Range Stream Driver, and Response Builder
// per spec.md §4.7.
type Pipeline struct {
	Agent           Agent
	Verifier        Verifier
	Service         string
	Method          string
	AllowSkipVerify bool
	MaxSkewNanos    int64
	MinVersion      uint16
	NowNanos        func() int64

	// Limits bounds the Body Collector's callback-chunk budgets. The zero
	// value resolves to bodycollect.DefaultLimits (spec.md §3's fixed
	// protocol constants); callers wanting the overridable ceilings from
	// gatewayconfig.Config should set this explicitly.
	Limits bodycollect.Limits
}

// Run executes the full pipeline for one inbound HTTP request and returns
// the GatewayResponse. It never panics: every failure is classified into an
// ErrorKind and mapped to an HTTP status (spec.md §6.1, §7).
func (p Pipeline) Run(ctx context.Context, req *http.Request, body []byte) GatewayResponse {
	verifier := verify.Adapter{
		Verifier:     p.Verifier,
		RootKeyFn:    p.Agent.RootKey,
		MaxSkewNanos: p.MaxSkewNanos,
		MinVersion:   p.MinVersion,
		NowNanos:     p.NowNanos,
	}

	limits := p.Limits
	if limits == (bodycollect.Limits{}) {
		limits = bodycollect.DefaultLimits()
	}

	// Step 1: translate.
	tr, terr := translate.Translate(req)
	if terr != nil {
		return errorResponse(400, *terr)
	}
	translated := tr.Request
	translated.Body = body

	// Step 2: query, upgrading to an update call if required.
	reply, aerr := p.Agent.Query(ctx, p.Service, p.Method, translated, MaxVerificationVersion)
	if aerr != nil {
		return agentErrorResponse(aerr)
	}

	upgraded := false
	if reply.Upgrade {
		Log().Debug("upgrading to update call", zap.String("service", p.Service), zap.String("method", p.Method))
		reply, aerr = p.Agent.UpdateAndWait(ctx, p.Service, p.Method, translated)
		if aerr != nil {
			return agentErrorResponse(aerr)
		}
		upgraded = true
	}

	// Step 3: collect body.
	collected, cerr := bodycollect.Collect(ctx, p.Agent, p.Service, reply, limits)
	if cerr != nil {
		return errorResponse(500, *cerr)
	}

	// Step 4: verification eligibility (spec.md §4.7 step 4 — the current,
	// verifying revision: 206 is no longer exempted; see spec.md §9).
	var info *VerificationInfo
	eligibleForVerification := !upgraded && collected.Kind == BodyFull
	if eligibleForVerification {
		var verr *Error
		info, verr = verifier.Verify(ctx, translated, reply, p.Service, p.AllowSkipVerify)
		if verr != nil {
			return errorResponse(500, *verr)
		}
	}

	// Step 5 & 6: status/header policy.
	buildInput := respbuild.Input{
		BackendStatus:        reply.StatusCode,
		BackendHeaders:       reply.Headers,
		SkipVerification:     p.AllowSkipVerify && info == nil,
		Info:                 info,
		ClientIsRangeRequest: tr.ClientIsRangeRequest,
	}

	// Step 7: activate the Range Stream Driver when the client didn't
	// itself ask for a range and the backend answered 206 with a fully
	// buffered body.
	activateRange := reply.StatusCode == 206 && !tr.ClientIsRangeRequest && collected.Kind == BodyFull
	var outBody Body
	if activateRange {
		state, serr := rangestream.ParseInitial(reply, translated, p.Service, p.Method, buildInput.SkipVerification)
		if serr != nil {
			return errorResponse(500, *serr)
		}
		driver := rangestream.NewDriver(ctx, state, p.Agent, verifier.Verify)
		buildInput.RangeActivated = true
		buildInput.RangeTotalLength = state.TotalLength
		outBody = Body{Kind: BodyStream, Stream: &firstFrameThenDriver{first: collected.Full, driver: driver}}
	} else {
		outBody = collected
	}

	result, berr := respbuild.Build(buildInput)
	if berr != nil {
		return errorResponse(berr.StatusCode, *berr)
	}

	var verVersion *uint16
	if info != nil {
		v := info.VerificationVersion
		verVersion = &v
	}

	return GatewayResponse{
		Status:  result.Status,
		Headers: result.Headers,
		Body:    outBody,
		Metadata: Metadata{
			UpgradedToUpdateCall:        upgraded,
			ResponseVerificationVersion: verVersion,
		},
	}
}

// firstFrameThenDriver emits the initial chunk's bytes once, then defers to
// the Range Stream Driver for everything after.
type firstFrameThenDriver struct {
	first   []byte
	emitted bool
	driver  *rangestream.Driver
}

func (f *firstFrameThenDriver) Next() (Frame, error) {
	if !f.emitted {
		f.emitted = true
		return Frame{Data: f.first}, nil
	}
	return f.driver.Next()
}

func errorResponse(status int, err Error) GatewayResponse {
	kind := err.Kind
	return GatewayResponse{
		Status:  status,
		Headers: []HttpHeader{{Name: "Content-Type", Value: "text/plain; charset=utf-8"}},
		Body:    Body{Kind: BodyFull, Full: []byte(err.Error())},
		Metadata: Metadata{
			InternalError: &kind,
		},
	}
}

// agentErrorResponse maps AgentError variants to HTTP status per spec.md §6.1.
func agentErrorResponse(err error) GatewayResponse {
	ae, ok := err.(AgentError)
	if !ok {
		gwErr := NewError(ErrorKindTransport, 502, err)
		return errorResponse(502, gwErr)
	}
	switch ae.Kind {
	case AgentCertifiedReject, AgentUncertifiedReject:
		if ae.Code == RejectDestinationInvalid {
			return errorResponse(404, NewError(ErrorKindTransport, 404, ae))
		}
		return errorResponse(502, NewError(ErrorKindTransport, 502, ae))
	case AgentResponseSizeExceeded:
		return errorResponse(507, NewError(ErrorKindTransport, 507, ae))
	case AgentHTTPTransport:
		return errorResponse(502, NewError(ErrorKindTransport, 502, ae))
	default:
		return errorResponse(502, NewError(ErrorKindTransport, 502, ae))
	}
}
