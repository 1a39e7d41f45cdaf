package config

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/joho/godotenv"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/q-controller/imgctl/src/pkg/utils"
)

const (
	EnvBaseURL    = "IMG_STORE_URL"
	EnvAPIKey     = "IMG_STORE_API_KEY"
	EnvAuthScheme = "IMG_STORE_AUTH_SCHEME"
	EnvCacheDir   = "IMG_STORE_CACHE_DIR"
)

type Config struct {
	BaseURL            string            `yaml:"base_url"`
	APIKey             string            `yaml:"api_key"`
	AuthScheme         string            `yaml:"auth_scheme"`
	Timeout            time.Duration     `yaml:"timeout"`
	MaxDownloadSize    datasize.ByteSize `yaml:"max_download_size"`
	CacheDir           string            `yaml:"cache_dir"`
	VerifyIDs          bool              `yaml:"verify_ids"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify"`
}

func Default() *Config {
	return &Config{
		BaseURL:         images.DefaultBaseURL,
		AuthScheme:      images.SchemeBearer,
		Timeout:         images.DefaultTimeout,
		MaxDownloadSize: datasize.ByteSize(images.DefaultMaxDownloadSize),
	}
}

// Load reads the YAML file at path (optional) over the defaults, then applies
// environment overrides. A .env file in the working directory is honoured.
func Load(path string) (*Config, error) {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := utils.Unmarshal(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if value := os.Getenv(EnvBaseURL); value != "" {
		c.BaseURL = value
	}
	if value := os.Getenv(EnvAPIKey); value != "" {
		c.APIKey = value
	}
	if value := os.Getenv(EnvAuthScheme); value != "" {
		c.AuthScheme = value
	}
	if value := os.Getenv(EnvCacheDir); value != "" {
		c.CacheDir = value
	}
}

func (c *Config) Validate() error {
	if !utils.IsHTTP(c.BaseURL) {
		return fmt.Errorf("invalid config: base_url %q must be an http or https URL", c.BaseURL)
	}
	if _, err := c.Credential(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid config: timeout must not be negative")
	}
	return nil
}

func (c *Config) Credential() (images.Credential, error) {
	return images.NewCredential(c.AuthScheme, c.APIKey)
}

// HTTPClient builds the client used for both the image store and remote
// fetches.
func (c *Config) HTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Transport: transport}
}

func (c *Config) ClientOptions() ([]images.Option, error) {
	credential, err := c.Credential()
	if err != nil {
		return nil, err
	}

	return []images.Option{
		images.WithCredential(credential),
		images.WithHTTPClient(c.HTTPClient()),
		images.WithTimeout(c.Timeout),
		images.WithMaxDownloadSize(int64(c.MaxDownloadSize.Bytes())),
		images.WithVerifyIDs(c.VerifyIDs),
	}, nil
}

// String renders the configuration with the API key masked.
func (c *Config) String() string {
	key := ""
	if c.APIKey != "" {
		key = strings.Repeat("*", 8)
	}
	return fmt.Sprintf("base_url=%s auth_scheme=%s api_key=%s timeout=%s max_download_size=%s cache_dir=%q verify_ids=%t",
		c.BaseURL, c.AuthScheme, key, c.Timeout, c.MaxDownloadSize.HumanReadable(), c.CacheDir, c.VerifyIDs)
}
