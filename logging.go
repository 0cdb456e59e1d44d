package gateway

import (
	"go.uber.org/zap"

	"github.com/icgateway/gateway/internal/gatewaytypes"
)

// Log returns the package-level logger used by the Pipeline and its
// components. The zero value is a no-op logger; call SetLogger to attach a
// real sink.
func Log() *zap.Logger {
	return gatewaytypes.Log()
}

// SetLogger replaces the package-level logger. Passing nil restores the
// no-op default.
func SetLogger(l *zap.Logger) {
	gatewaytypes.SetLogger(l)
}
