package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SERVER_HOST", "SERVER_PORT",
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_AUTH_HEADER",
	"GEMINI_API_KEY", "OPENAI_API_KEY",
	"PIPELINE_ANALYSIS_TIMEOUT", "PIPELINE_SCAFFOLD_TIMEOUT", "PIPELINE_STYLING_TIMEOUT", "PIPELINE_RUN_TIMEOUT",
	"PREVIEW_CACHE_SIZE", "MONGO_URI", "MONGO_DB", "CONFIG_DIR",
	"ARTIFACT_S3_ENDPOINT", "ARTIFACT_S3_REGION", "ARTIFACT_S3_BUCKET",
	"ARTIFACT_S3_ACCESS_KEY", "ARTIFACT_S3_SECRET_KEY", "ARTIFACT_S3_USE_SSL",
	"METRICS_ADDR", "WORKER_INTERVAL", "WORKER_CONCURRENCY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uistudio.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 120*time.Second, cfg.Pipeline.RunTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server {
  port = 9090
  read_timeout = "5s"
}

llm {
  provider = "openai"
  model    = "gpt-4o-mini"
}

pipeline {
  run_timeout        = "3m"
  preview_cache_size = 64
}

storage {
  artifact_dir = "/var/lib/uistudio"
  s3 {
    endpoint = "minio:9000"
    bucket   = "previews"
  }
}
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PIPELINE_SCAFFOLD_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 3*time.Minute, cfg.Pipeline.RunTimeout)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.ScaffoldTimeout)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.AnalysisTimeout)
	assert.Equal(t, 64, cfg.Pipeline.PreviewCacheSize)
	assert.Equal(t, "/var/lib/uistudio", cfg.Storage.ArtifactDir)
	assert.Equal(t, "minio:9000", cfg.Storage.S3.Endpoint)
	assert.Equal(t, "previews", cfg.Storage.S3.Bucket)
}

func TestLoadAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)

	t.Setenv("LLM_API_KEY", "explicit")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.LLM.APIKey)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad hcl", file: `server { port = }`},
		{name: "unknown block", file: `database { uri = "x" }`},
		{name: "bad duration in file", file: `pipeline { run_timeout = "soon" }`},
		{name: "bad duration in env", env: map[string]string{"PIPELINE_RUN_TIMEOUT": "soon"}},
		{name: "bad port", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "unknown provider", env: map[string]string{"LLM_PROVIDER": "llama"}},
		{name: "gateway without url", env: map[string]string{"LLM_PROVIDER": "gateway"}},
		{name: "zero timeout", env: map[string]string{"PIPELINE_STYLING_TIMEOUT": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
