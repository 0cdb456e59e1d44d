// Package respbuild implements the Response Builder (spec.md §4.6): the
// header/status policy table that differs between verification versions,
// and the final outward HTTP response assembly.
package respbuild

import (
	"fmt"
	"strings"

	gateway "github.com/icgateway/gateway/internal/gatewaytypes"
)

const headerCacheControl = "Cache-Control"
const headerContentRange = "Content-Range"
const headerContentLength = "Content-Length"

// Input bundles everything the policy table in spec.md §4.6 needs.
type Input struct {
	BackendStatus        uint16
	BackendHeaders       []gateway.HttpHeader
	SkipVerification     bool
	Info                 *gateway.VerificationInfo // nil when verification didn't run
	ClientIsRangeRequest bool
	RangeActivated       bool // Range Stream Driver took over this response
	RangeTotalLength     int64
}

// Result is the status/headers half of the outward response; the body is
// assembled separately by the caller (Pipeline), since the Range Stream
// Driver may replace it after Build runs.
type Result struct {
	Status  int
	Headers []gateway.HttpHeader
}

// Build applies the header-filter decision table of spec.md §4.6.
func Build(in Input) (Result, *gateway.Error) {
	status, serr := translateStatus(in.BackendStatus)
	if serr != nil {
		return Result{}, serr
	}

	var headers []gateway.HttpHeader
	switch {
	case in.SkipVerification && in.Info == nil:
		headers = copyAll(in.BackendHeaders)

	case in.Info != nil && in.Info.VerificationVersion == 1:
		if status >= 300 && status <= 399 {
			e := gateway.NewError(gateway.ErrorKindVerification, 500, fmt.Errorf("Response verification v1 does not allow redirects"))
			return Result{}, &e
		}
		headers = copyAllExcept(in.BackendHeaders, headerCacheControl)

	case in.Info != nil && in.Info.VerificationVersion >= 2 && in.Info.CertifiedResponse == nil:
		headers = copyAll(in.BackendHeaders)
		headers = drop206HeadersIfApplicable(headers, status, in)

	case in.Info != nil && in.Info.VerificationVersion >= 2 && in.Info.CertifiedResponse != nil:
		headers = copyAll(in.Info.CertifiedResponse.Headers)
		headers = drop206HeadersIfApplicable(headers, status, in)

	default:
		// Verification was never eligible to run (upgraded-to-update
		// reply, or a streamed body per spec.md §4.7 step 4): pass the
		// backend's headers through untouched, same as an explicit skip.
		headers = copyAll(in.BackendHeaders)
	}

	if in.RangeActivated {
		status = 200
		headers = removeHeader(headers, headerContentRange)
		headers = removeHeader(headers, headerContentLength)
		headers = append(headers, gateway.HttpHeader{
			Name:  headerContentLength,
			Value: fmt.Sprintf("%d", in.RangeTotalLength),
		})
	}

	return Result{Status: status, Headers: headers}, nil
}

func drop206HeadersIfApplicable(headers []gateway.HttpHeader, status int, in Input) []gateway.HttpHeader {
	if status == 206 && !in.ClientIsRangeRequest {
		headers = removeHeader(headers, headerContentRange)
		headers = removeHeader(headers, headerContentLength)
	}
	return headers
}

func translateStatus(backendStatus uint16) (int, *gateway.Error) {
	if backendStatus < 100 || backendStatus > 599 {
		e := gateway.NewError(gateway.ErrorKindInvalidStatus, 500, fmt.Errorf("invalid backend status %d", backendStatus))
		return 0, &e
	}
	return int(backendStatus), nil
}

func copyAll(headers []gateway.HttpHeader) []gateway.HttpHeader {
	out := make([]gateway.HttpHeader, len(headers))
	copy(out, headers)
	return out
}

func copyAllExcept(headers []gateway.HttpHeader, except string) []gateway.HttpHeader {
	var out []gateway.HttpHeader
	for _, h := range headers {
		if strings.EqualFold(h.Name, except) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func removeHeader(headers []gateway.HttpHeader, name string) []gateway.HttpHeader {
	var out []gateway.HttpHeader
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			continue
		}
		out = append(out, h)
	}
	return out
}
