// Package verify implements the Verifier Adapter (spec.md §4.5), grounded
// in the original Rust gateway's protocol/validate.rs: skip-verification is
// conditional not just on the caller's flag but also on whether the
// backend's reply actually carries an IC-Certificate header (see
// SPEC_FULL.md, supplemented feature 1).
package verify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	gateway "github.com/icgateway/gateway/internal/gatewaytypes"
)

const certificateHeaderName = "IC-Certificate"

// Adapter invokes the external Verifier collaborator and interprets its
// result per spec.md §4.5.
type Adapter struct {
	Verifier     gateway.Verifier
	RootKeyFn    func(ctx context.Context) ([]byte, error)
	MaxSkewNanos int64
	MinVersion   uint16
	NowNanos     func() int64
}

// Verify returns (nil, nil) when verification is skipped, (info, nil) on a
// successful verification, or a Verification-kind error otherwise.
func (a Adapter) Verify(ctx context.Context, req gateway.HttpRequest, resp gateway.HttpResponse, service string, allowSkip bool) (*gateway.VerificationInfo, *gateway.Error) {
	if allowSkip && !hasCertificateHeader(resp) {
		gateway.Log().Debug("skipping verification", zap.String("service", service), zap.Bool("raw_domain_skip", true))
		return nil, nil
	}

	rootKey, err := a.RootKeyFn(ctx)
	if err != nil {
		gwErr := gateway.NewError(gateway.ErrorKindVerification, 500, err)
		return nil, &gwErr
	}

	info, err := a.Verifier.VerifyRequestResponsePair(
		ctx,
		req,
		resp,
		service,
		a.NowNanos(),
		a.MaxSkewNanos,
		rootKey,
		a.MinVersion,
	)
	if err != nil {
		gwErr := gateway.NewError(gateway.ErrorKindVerification, 500, err)
		return nil, &gwErr
	}

	return &info, nil
}

func hasCertificateHeader(resp gateway.HttpResponse) bool {
	for _, h := range resp.Headers {
		if strings.EqualFold(h.Name, certificateHeaderName) {
			return true
		}
	}
	return false
}
