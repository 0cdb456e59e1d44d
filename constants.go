package gateway

import "github.com/icgateway/gateway/internal/gatewaytypes"

// Protocol constants fixed by spec.md §3. Treated as the protocol contract
// (spec.md §9 Open Question) rather than per-request configuration;
// gatewayconfig.Config lets an operator override them without touching
// this package's defaults.
const (
	// MaxUncertifiedChunks bounds how many further callback chunks an
	// uncertified stream will pull beyond the certified budget.
	MaxUncertifiedChunks = gatewaytypes.MaxUncertifiedChunks
	// MaxCertifiedCallbackChunks bounds how many callback chunks the
	// Body Collector will buffer in memory for certification to remain
	// possible.
	MaxCertifiedCallbackChunks = gatewaytypes.MaxCertifiedCallbackChunks
	// CallbackPrefetchDepth is the number of in-flight callback pulls
	// the Body Collector may have outstanding at once.
	CallbackPrefetchDepth = gatewaytypes.CallbackPrefetchDepth
	// MaxCertificateTimeSkewNanos is the certificate time-skew tolerance,
	// in nanoseconds (300s).
	MaxCertificateTimeSkewNanos = gatewaytypes.MaxCertificateTimeSkewNanos
	// MaxVerificationVersion is the highest response-verification
	// protocol version this gateway asks the backend for.
	MaxVerificationVersion = gatewaytypes.MaxVerificationVersion
	// MinVerificationVersion is the lowest version the Verifier Adapter
	// will accept.
	MinVerificationVersion = gatewaytypes.MinVerificationVersion
)
