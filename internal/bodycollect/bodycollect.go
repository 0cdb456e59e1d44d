// Package bodycollect implements the Body Collector (spec.md §4.3): given a
// backend reply, it produces either a fully buffered Body or a lazy
// callback-driven stream, honoring the certified-chunk budget.
package bodycollect

import (
	"context"
	"io"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	gateway "github.com/icgateway/gateway/internal/gatewaytypes"
)

// Limits bounds the Body Collector's chunk budgets. Zero fields are
// invalid; callers needing the spec.md §3 defaults should use
// DefaultLimits.
type Limits struct {
	// MaxCertifiedCallbackChunks bounds how many callback chunks are
	// buffered in memory for certification to remain possible.
	MaxCertifiedCallbackChunks int
	// MaxUncertifiedChunks bounds how many further callback chunks an
	// uncertified stream will pull beyond the certified budget.
	MaxUncertifiedChunks int
	// CallbackPrefetchDepth is the number of in-flight callback pulls
	// the uncertified stream may have outstanding at once.
	CallbackPrefetchDepth int
}

// DefaultLimits returns the spec.md §3 protocol constants as Limits.
func DefaultLimits() Limits {
	return Limits{
		MaxCertifiedCallbackChunks: gateway.MaxCertifiedCallbackChunks,
		MaxUncertifiedChunks:       gateway.MaxUncertifiedChunks,
		CallbackPrefetchDepth:      gateway.CallbackPrefetchDepth,
	}
}

// Collect runs the algorithm in spec.md §4.3 against reply, using agent to
// follow any callback-streaming strategy, honoring limits (use
// DefaultLimits for the spec.md §3 protocol constants).
func Collect(ctx context.Context, agent gateway.Agent, service string, reply gateway.HttpResponse, limits Limits) (gateway.Body, *gateway.Error) {
	if reply.StreamingStrategy == nil || reply.StreamingStrategy.Kind == gateway.StreamNone {
		return gateway.Body{Kind: gateway.BodyFull, Full: reply.Body}, nil
	}

	strategy := *reply.StreamingStrategy
	buf := append([]byte(nil), reply.Body...)
	token := strategy.InitialToken

	for i := 0; i < limits.MaxCertifiedCallbackChunks && token != nil; i++ {
		chunk, next, err := agent.StreamCallback(ctx, strategy.CallbackRef, token)
		if err != nil {
			gwErr := gateway.NewError(gateway.ErrorKindTransport, 500, err)
			return gateway.Body{}, &gwErr
		}
		buf = append(buf, chunk...)
		token = next
	}

	if token == nil {
		gateway.Log().Debug("body collected within certified budget",
			zap.String("service", service),
			zap.String("size", humanize.Bytes(uint64(len(buf)))),
		)
		return gateway.Body{Kind: gateway.BodyFull, Full: buf}, nil
	}

	gateway.Log().Debug("body exceeds certified budget, streaming uncertified",
		zap.String("service", service),
		zap.String("collected_so_far", humanize.Bytes(uint64(len(buf)))),
	)

	src := newCallbackStream(ctx, agent, strategy.CallbackRef, token, buf, limits)
	return gateway.Body{Kind: gateway.BodyStream, Stream: src}, nil
}

// callbackStream is the uncertified continuation of a callback chain,
// capped at limits.MaxUncertifiedChunks further pulls, prefetched with
// buffer depth limits.CallbackPrefetchDepth. Order of delivery to the
// consumer matches pull order.
type callbackStream struct {
	ctx       context.Context
	agent     gateway.Agent
	ref       gateway.CallbackRef
	maxChunks int
	results   chan frameOrErr
	done      chan struct{}
	firstHit  bool
	first     []byte
}

type frameOrErr struct {
	frame gateway.Frame
	err   error
}

func newCallbackStream(ctx context.Context, agent gateway.Agent, ref gateway.CallbackRef, token gateway.Token, first []byte, limits Limits) *callbackStream {
	s := &callbackStream{
		ctx:       ctx,
		agent:     agent,
		ref:       ref,
		maxChunks: limits.MaxUncertifiedChunks,
		results:   make(chan frameOrErr, limits.CallbackPrefetchDepth),
		done:      make(chan struct{}),
		first:     first,
	}
	go s.run(token)
	return s
}

func (s *callbackStream) run(token gateway.Token) {
	defer close(s.results)
	for i := 0; i < s.maxChunks && token != nil; i++ {
		chunk, next, err := s.agent.StreamCallback(s.ctx, s.ref, token)
		if err != nil {
			select {
			case s.results <- frameOrErr{err: err}:
			case <-s.done:
			case <-s.ctx.Done():
			}
			return
		}
		select {
		case s.results <- frameOrErr{frame: gateway.Frame{Data: chunk}}:
		case <-s.done:
			return
		case <-s.ctx.Done():
			return
		}
		token = next
	}
}

// Next implements gateway.FrameSource.
func (s *callbackStream) Next() (gateway.Frame, error) {
	if !s.firstHit {
		s.firstHit = true
		if len(s.first) > 0 {
			return gateway.Frame{Data: s.first}, nil
		}
	}
	r, ok := <-s.results
	if !ok {
		return gateway.Frame{}, io.EOF
	}
	if r.err != nil {
		close(s.done)
		return gateway.Frame{}, r.err
	}
	return r.frame, nil
}
