package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvAPIKey, EnvAuthScheme, EnvCacheDir} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imgctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, images.DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, images.SchemeBearer, cfg.AuthScheme)
	require.Equal(t, images.DefaultTimeout, cfg.Timeout)
	require.Equal(t, uint64(images.DefaultMaxDownloadSize), cfg.MaxDownloadSize.Bytes())

	credential, err := cfg.Credential()
	require.NoError(t, err)
	require.Nil(t, credential)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
base_url: https://images.example.com
api_key: secret
auth_scheme: api-key
timeout: 5s
max_download_size: 16MB
cache_dir: /tmp/imgctl-cache
verify_ids: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://images.example.com", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, 16*datasize.MB, cfg.MaxDownloadSize)
	require.Equal(t, "/tmp/imgctl-cache", cfg.CacheDir)
	require.True(t, cfg.VerifyIDs)

	credential, err := cfg.Credential()
	require.NoError(t, err)
	require.Equal(t, images.APIKey("secret"), credential)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "base_url: https://file.example.com\napi_key: from-file\n")
	t.Setenv(EnvBaseURL, "http://env.example.com:9000")
	t.Setenv(EnvAPIKey, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://env.example.com:9000", cfg.BaseURL)
	require.Equal(t, "from-env", cfg.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "base_url: ftp://example.com\n"))
	require.ErrorContains(t, err, "base_url")

	_, err = Load(writeConfig(t, "auth_scheme: digest\napi_key: k\n"))
	require.ErrorContains(t, err, "unknown auth scheme")

	_, err = Load(writeConfig(t, "unknown_key: 1\n"))
	require.Error(t, err)
}

func TestStringMasksKey(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "super-secret"
	require.NotContains(t, cfg.String(), "super-secret")
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "k"

	opts, err := cfg.ClientOptions()
	require.NoError(t, err)

	cli, err := images.New(cfg.BaseURL, opts...)
	require.NoError(t, err)
	require.Equal(t, images.DefaultBaseURL, cli.BaseURL())
}
