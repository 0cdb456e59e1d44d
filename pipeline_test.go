package gateway_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icgateway/gateway"
)

type stubAgent struct {
	queryResp gateway.HttpResponse
	rangeResp []gateway.HttpResponse
	rangeIdx  int
}

func (s *stubAgent) Query(context.Context, string, string, gateway.HttpRequest, uint16) (gateway.HttpResponse, error) {
	return s.queryResp, nil
}
func (s *stubAgent) UpdateAndWait(context.Context, string, string, gateway.HttpRequest) (gateway.HttpResponse, error) {
	return s.queryResp, nil
}
func (s *stubAgent) StreamCallback(context.Context, gateway.CallbackRef, gateway.Token) ([]byte, gateway.Token, error) {
	return nil, nil, nil
}
func (s *stubAgent) RangeQuery(context.Context, string, string, gateway.HttpRequest, uint16) (gateway.HttpResponse, error) {
	r := s.rangeResp[s.rangeIdx]
	s.rangeIdx++
	return r, nil
}
func (s *stubAgent) RootKey(context.Context) ([]byte, error) { return []byte("root"), nil }

type stubVerifier struct {
	info gateway.VerificationInfo
}

func (v stubVerifier) VerifyRequestResponsePair(context.Context, gateway.HttpRequest, gateway.HttpResponse, string, int64, int64, []byte, uint16) (gateway.VerificationInfo, error) {
	return v.info, nil
}

func newPipeline(agent gateway.Agent, verifier gateway.Verifier) gateway.Pipeline {
	return gateway.Pipeline{
		Agent:        agent,
		Verifier:     verifier,
		Service:      "svc",
		Method:       "http_request",
		MaxSkewNanos: gateway.MaxCertificateTimeSkewNanos,
		MinVersion:   gateway.MinVerificationVersion,
		NowNanos:     func() int64 { return 1 },
	}
}

// Scenario A: simple HTML, certified v2.
func TestPipelineSimpleHTML(t *testing.T) {
	body := []byte("<html><body>Hello, world!</body></html>")
	agent := &stubAgent{
		queryResp: gateway.HttpResponse{
			StatusCode: 200,
			Headers: []gateway.HttpHeader{
				{Name: "Content-Type", Value: "text/html"},
				{Name: "IC-Certificate", Value: "cert-bytes"},
			},
			Body: body,
		},
	}
	verifier := stubVerifier{info: gateway.VerificationInfo{
		VerificationVersion: 2,
		CertifiedResponse: &gateway.HttpResponse{
			Headers: []gateway.HttpHeader{
				{Name: "Content-Type", Value: "text/html"},
				{Name: "IC-Certificate", Value: "cert-bytes"},
			},
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := newPipeline(agent, verifier).Run(context.Background(), req, nil)

	require.Equal(t, 200, resp.Status)
	require.Equal(t, gateway.BodyFull, resp.Body.Kind)
	require.Equal(t, body, resp.Body.Full)
	require.NotNil(t, resp.Metadata.ResponseVerificationVersion)
	require.Equal(t, uint16(2), *resp.Metadata.ResponseVerificationVersion)

	hasCert := false
	for _, h := range resp.Headers {
		if h.Name == "IC-Certificate" {
			hasCert = true
		}
	}
	require.True(t, hasCert)
}

// Scenario D: range stitching end-to-end through the Pipeline.
func TestPipelineRangeStitching(t *testing.T) {
	const total = 4000012
	c1 := make([]byte, 2000000)
	c2 := make([]byte, 2000000)
	c3 := make([]byte, 12)
	agent := &stubAgent{
		queryResp: gateway.HttpResponse{
			StatusCode: 206,
			Headers:    []gateway.HttpHeader{{Name: "Content-Range", Value: "bytes 0-1999999/4000012"}},
			Body:       c1,
		},
		rangeResp: []gateway.HttpResponse{
			{StatusCode: 206, Headers: []gateway.HttpHeader{{Name: "Content-Range", Value: "bytes 2000000-3999999/4000012"}}, Body: c2},
			{StatusCode: 206, Headers: []gateway.HttpHeader{{Name: "Content-Range", Value: "bytes 4000000-4000011/4000012"}}, Body: c3},
		},
	}
	verifier := stubVerifier{info: gateway.VerificationInfo{VerificationVersion: 2}}

	req := httptest.NewRequest(http.MethodGet, "/six_chunks", nil)
	resp := newPipeline(agent, verifier).Run(context.Background(), req, nil)

	require.Equal(t, 200, resp.Status)
	require.Equal(t, gateway.BodyStream, resp.Body.Kind)

	var all []byte
	for {
		f, err := resp.Body.Stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		all = append(all, f.Data...)
	}
	require.Equal(t, total, len(all))

	foundLen := false
	for _, h := range resp.Headers {
		require.NotEqual(t, "Content-Range", h.Name)
		if h.Name == "Content-Length" {
			foundLen = true
			require.Equal(t, "4000012", h.Value)
		}
	}
	require.True(t, foundLen)
}

// Scenario G: v1 redirect is rejected with 500 and no Location header.
func TestPipelineV1RedirectRejected(t *testing.T) {
	agent := &stubAgent{
		queryResp: gateway.HttpResponse{
			StatusCode: 301,
			Headers:    []gateway.HttpHeader{{Name: "Location", Value: "https://example.com"}},
		},
	}
	verifier := stubVerifier{info: gateway.VerificationInfo{VerificationVersion: 1}}

	req := httptest.NewRequest(http.MethodGet, "/redirect", nil)
	resp := newPipeline(agent, verifier).Run(context.Background(), req, nil)

	require.Equal(t, 500, resp.Status)
	for _, h := range resp.Headers {
		require.NotEqual(t, "Location", h.Name)
	}
	require.Contains(t, string(resp.Body.Full), "Response verification v1 does not allow redirects")
}
