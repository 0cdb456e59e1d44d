// Package translate implements the Header/URL Translator (spec.md §4.1):
// converting an inbound HTTP request into the backend's request shape.
package translate

import (
	"net/http"
	"strings"
	"unicode/utf8"

	gateway "github.com/icgateway/gateway/internal/gatewaytypes"
)

const headerAcceptEncoding = "Accept-Encoding"
const headerRange = "Range"
const headerIfRange = "If-Range"
const headerDroppedRequestID = "x-request-id"

// Result is the outcome of Translate: the backend-shaped request, plus the
// flag the Range Stream Driver needs to know whether it may activate.
type Result struct {
	Request              gateway.HttpRequest
	ClientIsRangeRequest bool
}

// Translate converts req into the backend's request shape per spec.md
// §4.1. It never fails on a well-formed *http.Request; header decoding
// failures only occur for raw byte header values, which net/http has
// already decoded into strings by the time this is called, so failures
// here model a defensive re-validation of header value encodability.
func Translate(req *http.Request) (Result, *gateway.Error) {
	var headers []gateway.HttpHeader
	isRange := false

	for name, values := range req.Header {
		if strings.EqualFold(name, headerDroppedRequestID) {
			continue
		}
		for _, v := range values {
			if !utf8.ValidString(v) {
				err := gateway.NewError(gateway.ErrorKindHeaderDecoding, 400, headerDecodingError{name: name})
				return Result{}, &err
			}
			headers = append(headers, gateway.HttpHeader{Name: name, Value: v})
		}
		if strings.EqualFold(name, headerRange) || strings.EqualFold(name, headerIfRange) {
			isRange = true
		}
	}

	headers = normalizeAcceptEncoding(headers)

	url := req.URL.Path
	if req.URL.RawQuery != "" {
		url += "?" + req.URL.RawQuery
	}
	if url == "" {
		url = "/"
	}

	return Result{
		Request: gateway.HttpRequest{
			Method:  strings.ToUpper(req.Method),
			URL:     url,
			Headers: headers,
			Body:    nil, // filled in by the caller once the body is read
		},
		ClientIsRangeRequest: isRange,
	}, nil
}

// normalizeAcceptEncoding appends ", identity" to the first Accept-Encoding
// header if it doesn't already list it (case-insensitive, comma-split
// token match), guaranteeing the backend may always answer unencoded.
// Any later Accept-Encoding header lines are left unchanged.
// This happens exactly once, before any backend call (spec.md §5).
func normalizeAcceptEncoding(headers []gateway.HttpHeader) []gateway.HttpHeader {
	for i, h := range headers {
		if !strings.EqualFold(h.Name, headerAcceptEncoding) {
			continue
		}
		for _, tok := range strings.Split(h.Value, ",") {
			if strings.EqualFold(strings.TrimSpace(tok), "identity") {
				return headers
			}
		}
		headers[i].Value = h.Value + ", identity"
		return headers
	}
	return headers
}

type headerDecodingError struct {
	name string
}

func (e headerDecodingError) Error() string {
	return "invalid header encoding: " + e.name
}
