package gatewaytypes

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultLogger   = zap.NewNop()
	defaultLoggerMu sync.RWMutex
)

// Log returns the package-level logger used by the Pipeline and its
// components. The zero value is a no-op logger; call SetLogger to attach a
// real sink.
func Log() *zap.Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the package-level logger. Passing nil restores the
// no-op default.
func SetLogger(l *zap.Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	defaultLogger = l
}
