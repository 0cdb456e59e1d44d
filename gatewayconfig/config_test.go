package gatewayconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icgateway/gateway"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	require.Equal(t, gateway.MaxUncertifiedChunks, cfg.MaxUncertifiedChunks)
	require.Equal(t, gateway.MaxCertifiedCallbackChunks, cfg.MaxCertifiedCallbackChunks)
	require.Equal(t, gateway.CallbackPrefetchDepth, cfg.CallbackPrefetchDepth)
	require.Equal(t, int64(300), cfg.CertificateTimeSkewSeconds)
}

func TestLoadOverridesAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_uncertified_chunks = 500\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.MaxUncertifiedChunks)
	require.Equal(t, gateway.MaxCertifiedCallbackChunks, cfg.MaxCertifiedCallbackChunks)
	require.Equal(t, gateway.MaxCertificateTimeSkewNanos, cfg.CertificateTimeSkewNanos())
}

func TestLimitsProjectsChunkBudgets(t *testing.T) {
	cfg := Default()
	cfg.MaxUncertifiedChunks = 500

	limits := cfg.Limits()
	require.Equal(t, 500, limits.MaxUncertifiedChunks)
	require.Equal(t, gateway.MaxCertifiedCallbackChunks, limits.MaxCertifiedCallbackChunks)
	require.Equal(t, gateway.CallbackPrefetchDepth, limits.CallbackPrefetchDepth)
}
