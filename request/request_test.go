package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icgateway/gateway"
	"github.com/icgateway/gateway/gatewayconfig"
)

type nopAgent struct{}

func (nopAgent) Query(context.Context, string, string, gateway.HttpRequest, uint16) (gateway.HttpResponse, error) {
	return gateway.HttpResponse{StatusCode: 200, Body: []byte("ok")}, nil
}
func (nopAgent) UpdateAndWait(context.Context, string, string, gateway.HttpRequest) (gateway.HttpResponse, error) {
	return gateway.HttpResponse{StatusCode: 200}, nil
}
func (nopAgent) StreamCallback(context.Context, gateway.CallbackRef, gateway.Token) ([]byte, gateway.Token, error) {
	return nil, nil, nil
}
func (nopAgent) RangeQuery(context.Context, string, string, gateway.HttpRequest, uint16) (gateway.HttpResponse, error) {
	return gateway.HttpResponse{}, nil
}
func (nopAgent) RootKey(context.Context) ([]byte, error) { return nil, nil }

type nopVerifier struct{}

func (nopVerifier) VerifyRequestResponsePair(context.Context, gateway.HttpRequest, gateway.HttpResponse, string, int64, int64, []byte, uint16) (gateway.VerificationInfo, error) {
	return gateway.VerificationInfo{VerificationVersion: 2}, nil
}

func TestBuilderSendIsOneShot(t *testing.T) {
	b := New(nopAgent{}, nopVerifier{}, "svc", "http_request").
		WithRequest(httptest.NewRequest(http.MethodGet, "/", nil), nil)

	_, err := b.Send(context.Background())
	require.NoError(t, err)

	_, err = b.Send(context.Background())
	require.ErrorIs(t, err, ErrAlreadySent)
}

func TestBuilderRequiresWithRequest(t *testing.T) {
	b := New(nopAgent{}, nopVerifier{}, "svc", "http_request")
	_, err := b.Send(context.Background())
	require.Error(t, err)
}

func TestBuilderUnsafeAllowSkipVerificationDefaultsFalse(t *testing.T) {
	b := New(nopAgent{}, nopVerifier{}, "svc", "http_request")
	require.False(t, b.allowSkipVerification)
	b.UnsafeAllowSkipVerification(true)
	require.True(t, b.allowSkipVerification)
}

// callbackAgent answers Query with a callback-streaming reply and follows
// a fixed, in-order chunk list on StreamCallback.
type callbackAgent struct {
	nopAgent
	chunks [][]byte
}

func (a callbackAgent) Query(context.Context, string, string, gateway.HttpRequest, uint16) (gateway.HttpResponse, error) {
	return gateway.HttpResponse{
		StatusCode: 200,
		StreamingStrategy: &gateway.StreamingStrategy{
			Kind:         gateway.StreamCallback,
			InitialToken: gateway.Token{0},
		},
	}, nil
}

func (a callbackAgent) StreamCallback(_ context.Context, _ gateway.CallbackRef, token gateway.Token) ([]byte, gateway.Token, error) {
	idx := int(token[0])
	chunk := a.chunks[idx]
	var next gateway.Token
	if idx+1 < len(a.chunks) {
		next = gateway.Token{byte(idx + 1)}
	}
	return chunk, next, nil
}

// WithConfig's chunk budgets actually reach the Body Collector: a Config
// with a lower MaxCertifiedCallbackChunks than the spec.md §3 default turns
// a reply that would otherwise collect as Full into a Stream.
func TestBuilderWithConfigOverridesCertifiedBudget(t *testing.T) {
	agent := callbackAgent{chunks: [][]byte{[]byte("B"), []byte("C"), []byte("D")}}

	cfg := gatewayconfig.Default()
	cfg.MaxCertifiedCallbackChunks = 1

	b := New(agent, nopVerifier{}, "svc", "http_request").
		WithConfig(cfg).
		WithRequest(httptest.NewRequest(http.MethodGet, "/", nil), nil)

	resp, err := b.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, gateway.BodyStream, resp.Body.Kind)
}
