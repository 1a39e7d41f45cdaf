package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/q-controller/imgctl/src/pkg/config"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/q-controller/imgctl/src/pkg/images/cache"
	"github.com/q-controller/imgctl/src/pkg/logging"
	"github.com/spf13/cobra"
)

// settings is resolved once per invocation before any subcommand runs.
var settings *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "imgctl",
	Short:         "A client for the image store: upload, download, inspect and delete images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelFromEnv()
		if cmd.Flags().Changed("log-level") {
			name, nameErr := cmd.Flags().GetString("log-level")
			if nameErr != nil {
				return fmt.Errorf("failed to get log-level: %w", nameErr)
			}
			level = logging.ParseLevel(name)
		}
		slog.SetDefault(logging.NewLogger(cmd.ErrOrStderr(), level))

		cfg, cfgErr := loadConfig(cmd)
		if cfgErr != nil {
			return cfgErr
		}
		slog.Debug("Read config", "config", cfg.String())

		settings = cfg
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, configPathErr := cmd.Flags().GetString("config")
	if configPathErr != nil {
		return nil, fmt.Errorf("failed to get config: %w", configPathErr)
	}

	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		return nil, cfgErr
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL, _ = flags.GetString("url")
	}
	if flags.Changed("api-key") {
		cfg.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("auth-scheme") {
		cfg.AuthScheme, _ = flags.GetString("auth-scheme")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir, _ = flags.GetString("cache-dir")
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return cfg, nil
}

// newImageClient builds the client described by the resolved settings. When
// a cache directory is configured the client is wrapped in a CachedClient and
// the returned close function releases the cache.
func newImageClient(extra ...images.Option) (images.ImageClient, func() error, error) {
	opts, optsErr := settings.ClientOptions()
	if optsErr != nil {
		return nil, nil, optsErr
	}
	opts = append(opts, extra...)

	client, clientErr := images.New(settings.BaseURL, opts...)
	if clientErr != nil {
		return nil, nil, clientErr
	}

	if settings.CacheDir == "" {
		return client, func() error { return nil }, nil
	}

	backend, backendErr := cache.NewLocalFilesystemBackend(settings.CacheDir)
	if backendErr != nil {
		return nil, nil, backendErr
	}
	return images.NewCachedClient(client, backend), backend.Close, nil
}

// withImageClient runs fn with a client and joins the cache close error into
// the result.
func withImageClient(fn func(cli images.ImageClient) error, extra ...images.Option) (retErr error) {
	cli, closeFn, cliErr := newImageClient(extra...)
	if cliErr != nil {
		return cliErr
	}

	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			if retErr == nil {
				// Return close error if no other error
				retErr = closeErr
			} else {
				retErr = errors.Join(retErr, closeErr)
			}
		}
	}()

	return fn(cli)
}

func Execute() {
	// Replaced in PersistentPreRunE once flags are parsed; covers errors
	// raised before that point.
	slog.SetDefault(logging.CreateLogger(logging.LevelFromEnv()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		slog.Error("failed to execute command", "error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to imgctl's config file")
	flags.String("url", "", fmt.Sprintf("Image store base URL (default %s, env %s)", images.DefaultBaseURL, config.EnvBaseURL))
	flags.String("api-key", "", fmt.Sprintf("Credential for protected operations (env %s)", config.EnvAPIKey))
	flags.String("auth-scheme", "", fmt.Sprintf("How the credential is sent: bearer or api-key (env %s)", config.EnvAuthScheme))
	flags.Duration("timeout", images.DefaultTimeout, "Per-request timeout")
	flags.String("cache-dir", "", fmt.Sprintf("Directory for the local download cache (env %s)", config.EnvCacheDir))
	flags.String("log-level", "info", "Log level: debug, info, warn or error (env LOG_LEVEL)")
}
