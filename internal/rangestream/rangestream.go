// Package rangestream implements the Range Stream Driver (spec.md §4.4): a
// state machine that, after an initial 206 reply, issues successive
// Range: bytes=N- sub-requests, validates each chunk, and emits contiguous
// body frames.
package rangestream

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	gateway "github.com/icgateway/gateway/internal/gatewaytypes"
)

const headerContentRange = "Content-Range"
const headerRange = "Range"

// State is the RangeState of spec.md §3, one instance per 206 response.
type State struct {
	RequestTemplate  gateway.HttpRequest
	ServiceID        string
	Method           string
	TotalLength      int64
	FetchedLength    int64
	SkipVerification bool
}

// Verify is the narrow seam the driver needs from the Verifier Adapter: it
// verifies one chunk response against the request that produced it.
type Verify func(ctx context.Context, req gateway.HttpRequest, resp gateway.HttpResponse, service string, skip bool) (*gateway.VerificationInfo, *gateway.Error)

// ParseInitial parses the Content-Range header of the initial 206 reply and
// builds a State, per spec.md §4.4 "Initial step".
func ParseInitial(initial gateway.HttpResponse, requestTemplate gateway.HttpRequest, service, method string, skipVerification bool) (State, *gateway.Error) {
	cr, ok := initial.Header(headerContentRange)
	if !ok {
		return State{}, rangeSetupErr("Invalid Content-Range: missing header")
	}
	begin, end, total, perr := parseContentRange(cr)
	if perr != nil {
		return State{}, rangeSetupErr("Invalid Content-Range: " + perr.Error())
	}
	if !(begin <= end && end < total) {
		return State{}, rangeSetupErr("inconsistent Content-Range")
	}

	return State{
		RequestTemplate:  requestTemplate,
		ServiceID:        service,
		Method:           method,
		TotalLength:      total,
		FetchedLength:    end - begin + 1,
		SkipVerification: skipVerification,
	}, nil
}

// Driver pulls successive chunks from the backend and emits verified
// contiguous frames. It implements gateway.FrameSource.
type Driver struct {
	state  State
	agent  gateway.Agent
	verify Verify
	ctx    context.Context
	done   bool
}

// NewDriver constructs a Driver from an already-parsed State.
func NewDriver(ctx context.Context, state State, agent gateway.Agent, verify Verify) *Driver {
	return &Driver{state: state, agent: agent, verify: verify, ctx: ctx}
}

// TotalLength is the full resource length parsed from the initial chunk.
func (d *Driver) TotalLength() int64 { return d.state.TotalLength }

// Next implements gateway.FrameSource: issues one Range sub-request, validates
// it, and returns the next contiguous slice of body bytes.
func (d *Driver) Next() (gateway.Frame, error) {
	if d.done {
		return gateway.Frame{}, io.EOF
	}

	req := withRangeHeader(d.state.RequestTemplate, d.state.FetchedLength)

	resp, err := d.agent.RangeQuery(d.ctx, d.state.ServiceID, d.state.Method, req, gateway.MaxVerificationVersion)
	if err != nil {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindBodyAssembly, 500, err)
	}

	cr, ok := resp.Header(headerContentRange)
	if !ok {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindBodyAssembly, 500, fmt.Errorf("range chunk missing Content-Range"))
	}
	begin, end, _, perr := parseContentRange(cr)
	if perr != nil {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindBodyAssembly, 500, perr)
	}
	if begin > d.state.FetchedLength || end < d.state.FetchedLength {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindBodyAssembly, 500,
			fmt.Errorf("chunk out-of-order: range_begin=%d", begin))
	}
	if resp.StreamingStrategy != nil && resp.StreamingStrategy.Kind != gateway.StreamNone {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindBodyAssembly, 500,
			fmt.Errorf("range chunk must be self-contained, got a streaming_strategy"))
	}

	if _, verr := d.verify(d.ctx, req, resp, d.state.ServiceID, d.state.SkipVerification); verr != nil {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindVerification, 500,
			fmt.Errorf("CertificateVerificationFailed for a chunk starting at %d, error: %w", d.state.FetchedLength, verr))
	}

	newBytesBegin := d.state.FetchedLength - begin
	if newBytesBegin < 0 || newBytesBegin > int64(len(resp.Body)) {
		return gateway.Frame{}, gateway.NewError(gateway.ErrorKindBodyAssembly, 500,
			fmt.Errorf("chunk body shorter than expected offset"))
	}
	frame := gateway.Frame{Data: resp.Body[newBytesBegin:]}

	d.state.FetchedLength += end - d.state.FetchedLength + 1

	gateway.Log().Debug("range chunk fetched",
		zap.Int64("fetched_length", d.state.FetchedLength),
		zap.Int64("total_length", d.state.TotalLength),
		zap.String("chunk_size", humanize.Bytes(uint64(len(frame.Data)))),
	)

	if d.state.FetchedLength == d.state.TotalLength {
		d.done = true
	}
	return frame, nil
}

func withRangeHeader(tmpl gateway.HttpRequest, from int64) gateway.HttpRequest {
	req := tmpl
	req.Headers = make([]gateway.HttpHeader, 0, len(tmpl.Headers)+1)
	rangeVal := "bytes=" + strconv.FormatInt(from, 10) + "-"
	replaced := false
	for _, h := range tmpl.Headers {
		if strings.EqualFold(h.Name, headerRange) {
			req.Headers = append(req.Headers, gateway.HttpHeader{Name: headerRange, Value: rangeVal})
			replaced = true
			continue
		}
		req.Headers = append(req.Headers, h)
	}
	if !replaced {
		req.Headers = append(req.Headers, gateway.HttpHeader{Name: headerRange, Value: rangeVal})
	}
	return req
}

// parseContentRange parses "bytes <begin>-<end>/<total>".
func parseContentRange(v string) (begin, end, total int64, err error) {
	const prefix = "bytes "
	if !strings.HasPrefix(v, prefix) {
		return 0, 0, 0, fmt.Errorf("missing 'bytes ' prefix")
	}
	rest := strings.TrimPrefix(v, prefix)
	slashParts := strings.Split(rest, "/")
	if len(slashParts) != 2 {
		return 0, 0, 0, fmt.Errorf("wrong separator count")
	}
	dashParts := strings.Split(slashParts[0], "-")
	if len(dashParts) != 2 {
		return 0, 0, 0, fmt.Errorf("wrong separator count")
	}
	begin, err = strconv.ParseInt(dashParts[0], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric begin")
	}
	end, err = strconv.ParseInt(dashParts[1], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric end")
	}
	total, err = strconv.ParseInt(slashParts[1], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("non-numeric total")
	}
	return begin, end, total, nil
}

func rangeSetupErr(msg string) *gateway.Error {
	e := gateway.NewError(gateway.ErrorKindRangeSetupFailure, 500, fmt.Errorf("%s", msg))
	return &e
}
