// Package gatewayconfig loads the gateway's protocol ceilings from TOML.
// These are library-level knobs only (spec.md §3's chunk-count ceilings and
// certificate time skew); listener/TLS/outer-server configuration stays
// out of scope per spec.md §1.
package gatewayconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/icgateway/gateway"
	"github.com/icgateway/gateway/internal/bodycollect"
)

// Config mirrors the fixed protocol constants in spec.md §3, made
// overridable. Load replaces zero values with the spec defaults.
type Config struct {
	MaxUncertifiedChunks       int   `toml:"max_uncertified_chunks"`
	MaxCertifiedCallbackChunks int   `toml:"max_certified_callback_chunks"`
	CallbackPrefetchDepth      int   `toml:"callback_prefetch_depth"`
	CertificateTimeSkewSeconds int64 `toml:"certificate_time_skew_seconds"`
}

// Default returns the spec.md §3 constants as a Config.
func Default() Config {
	return Config{
		MaxUncertifiedChunks:       gateway.MaxUncertifiedChunks,
		MaxCertifiedCallbackChunks: gateway.MaxCertifiedCallbackChunks,
		CallbackPrefetchDepth:      gateway.CallbackPrefetchDepth,
		CertificateTimeSkewSeconds: gateway.MaxCertificateTimeSkewNanos / 1_000_000_000,
	}
}

// Load reads a TOML file at path and fills in any field left at its zero
// value with the spec default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("gatewayconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("gatewayconfig: parsing %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.MaxUncertifiedChunks == 0 {
		c.MaxUncertifiedChunks = def.MaxUncertifiedChunks
	}
	if c.MaxCertifiedCallbackChunks == 0 {
		c.MaxCertifiedCallbackChunks = def.MaxCertifiedCallbackChunks
	}
	if c.CallbackPrefetchDepth == 0 {
		c.CallbackPrefetchDepth = def.CallbackPrefetchDepth
	}
	if c.CertificateTimeSkewSeconds == 0 {
		c.CertificateTimeSkewSeconds = def.CertificateTimeSkewSeconds
	}
}

// CertificateTimeSkewNanos returns the skew tolerance in nanoseconds, as
// the Verifier Adapter expects it.
func (c Config) CertificateTimeSkewNanos() int64 {
	return c.CertificateTimeSkewSeconds * 1_000_000_000
}

// Limits projects the Body Collector's chunk budgets out of Config, as
// gateway.Pipeline and internal/bodycollect expect them.
func (c Config) Limits() bodycollect.Limits {
	return bodycollect.Limits{
		MaxCertifiedCallbackChunks: c.MaxCertifiedCallbackChunks,
		MaxUncertifiedChunks:       c.MaxUncertifiedChunks,
		CallbackPrefetchDepth:      c.CallbackPrefetchDepth,
	}
}
