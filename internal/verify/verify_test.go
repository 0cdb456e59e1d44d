package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	gateway "github.com/icgateway/gateway/internal/gatewaytypes"
)

type fakeVerifier struct {
	info VerificationInfoOrErr
}

type VerificationInfoOrErr struct {
	info gateway.VerificationInfo
	err  error
}

func (f fakeVerifier) VerifyRequestResponsePair(ctx context.Context, req gateway.HttpRequest, resp gateway.HttpResponse, service string, now int64, skew int64, rootKey []byte, minVersion uint16) (gateway.VerificationInfo, error) {
	return f.info.info, f.info.err
}

func newAdapter(v gateway.Verifier) Adapter {
	return Adapter{
		Verifier:     v,
		RootKeyFn:    func(ctx context.Context) ([]byte, error) { return []byte("root-key"), nil },
		MaxSkewNanos: gateway.MaxCertificateTimeSkewNanos,
		MinVersion:   gateway.MinVerificationVersion,
		NowNanos:     func() int64 { return 1234 },
	}
}

func TestVerifySkipsWhenAllowedAndNoCertificateHeader(t *testing.T) {
	a := newAdapter(fakeVerifier{})
	resp := gateway.HttpResponse{StatusCode: 200}

	info, err := a.Verify(context.Background(), gateway.HttpRequest{}, resp, "svc", true)
	require.Nil(t, err)
	require.Nil(t, info)
}

func TestVerifyStillRunsWhenSkipAllowedButCertificatePresent(t *testing.T) {
	wantInfo := gateway.VerificationInfo{VerificationVersion: 2}
	a := newAdapter(fakeVerifier{info: VerificationInfoOrErr{info: wantInfo}})
	resp := gateway.HttpResponse{
		StatusCode: 200,
		Headers:    []gateway.HttpHeader{{Name: "IC-Certificate", Value: "..."}},
	}

	info, err := a.Verify(context.Background(), gateway.HttpRequest{}, resp, "svc", true)
	require.Nil(t, err)
	require.NotNil(t, info)
	require.Equal(t, uint16(2), info.VerificationVersion)
}

func TestVerifyPropagatesFailureAsVerificationError(t *testing.T) {
	a := newAdapter(fakeVerifier{info: VerificationInfoOrErr{err: errors.New("bad cert")}})
	resp := gateway.HttpResponse{StatusCode: 200}

	info, err := a.Verify(context.Background(), gateway.HttpRequest{}, resp, "svc", false)
	require.Nil(t, info)
	require.NotNil(t, err)
	require.Equal(t, gateway.ErrorKindVerification, err.Kind)
	require.Equal(t, 500, err.StatusCode)
}
