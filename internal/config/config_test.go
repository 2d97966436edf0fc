package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "dartrag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
retry_attempts: 5
retry_wait: 2s
target_report_codes: ["11011"]
worker_count: 0
log_format: text
`), 0o644))
	t.Setenv("DARTRAG_DART_API_KEY", "from-env")
	t.Setenv("DARTRAG_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "from-env", cfg.DartAPIKey)
	assert.Equal(t, uint(5), cfg.RetryAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryWait)
	assert.Equal(t, []string{"11011"}, cfg.TargetReportCodes)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadChunkOverlap(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	for raw, want := range map[string]int{"0": 0, "-5": 200, "64": 64} {
		path := filepath.Join(t.TempDir(), "dartrag.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chunk_overlap: "+raw+"\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg.ChunkOverlap, "chunk_overlap: %s", raw)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateServe())
	assert.Error(t, cfg.ValidateFetch())

	cfg.APIKey = "k"
	assert.NoError(t, cfg.ValidateServe())

	cfg.PathstoreURL = "http://localhost:8080"
	assert.Error(t, cfg.ValidateServe())
	cfg.PathstoreAPIKey = "p"
	assert.NoError(t, cfg.ValidateServe())

	cfg.DartAPIKey = "d"
	assert.NoError(t, cfg.ValidateFetch())
}
