package gateway

import "github.com/icgateway/gateway/internal/gatewaytypes"

// Agent is the external RPC transport collaborator (spec.md §1, §4.2). It
// is a thin pass-through: retries, connection pooling, and request signing
// belong to the concrete implementation, never to the Pipeline.
type Agent = gatewaytypes.Agent

// Verifier is the external certificate-verification collaborator (spec.md
// §1, §4.5). Implementations interpret certificate/witness bytes; this
// module never parses them itself.
type Verifier = gatewaytypes.Verifier
