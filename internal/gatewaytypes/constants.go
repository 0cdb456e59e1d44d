package gatewaytypes

// Protocol constants fixed by spec.md §3. Treated as the protocol contract
// (spec.md §9 Open Question) rather than per-request configuration;
// gatewayconfig.Config lets an operator override them without touching
// this package's defaults.
const (
	// MaxUncertifiedChunks bounds how many further callback chunks an
	// uncertified stream will pull beyond the certified budget.
	MaxUncertifiedChunks = 1000
	// MaxCertifiedCallbackChunks bounds how many callback chunks the
	// Body Collector will buffer in memory for certification to remain
	// possible.
	MaxCertifiedCallbackChunks = 4
	// CallbackPrefetchDepth is the number of in-flight callback pulls
	// the Body Collector may have outstanding at once.
	CallbackPrefetchDepth = 2
	// MaxCertificateTimeSkewNanos is the certificate time-skew tolerance,
	// in nanoseconds (300s).
	MaxCertificateTimeSkewNanos = int64(300) * 1_000_000_000
	// MaxVerificationVersion is the highest response-verification
	// protocol version this gateway asks the backend for.
	MaxVerificationVersion uint16 = 2
	// MinVerificationVersion is the lowest version the Verifier Adapter
	// will accept.
	MinVerificationVersion uint16 = 1
)
