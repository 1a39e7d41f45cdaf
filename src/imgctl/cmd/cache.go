package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/q-controller/imgctl/src/pkg/config"
	"github.com/q-controller/imgctl/src/pkg/images/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects or clears the local download cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists cached images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(backend *cache.LocalFilesystemBackend) error {
			ids, listErr := backend.List()
			if listErr != nil {
				return listErr
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				metadata, metadataErr := backend.GetMetadata(id)
				if metadataErr != nil {
					return metadataErr
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
					metadata.ImageID,
					metadata.ContentType,
					datasize.ByteSize(metadata.Size).HumanReadable(),
					metadata.StoredAt.Format(time.RFC3339),
				)
			}
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes every cached image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(backend *cache.LocalFilesystemBackend) error {
			ids, listErr := backend.List()
			if listErr != nil {
				return listErr
			}

			for _, id := range ids {
				if removeErr := backend.Remove(id); removeErr != nil {
					return removeErr
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached images\n", len(ids))
			return nil
		})
	},
}

func withCache(fn func(backend *cache.LocalFilesystemBackend) error) (retErr error) {
	if settings.CacheDir == "" {
		return fmt.Errorf("no cache configured: set cache_dir, --cache-dir or %s", config.EnvCacheDir)
	}

	backend, backendErr := cache.NewLocalFilesystemBackend(settings.CacheDir)
	if backendErr != nil {
		return backendErr
	}

	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			if retErr == nil {
				// Return close error if no other error
				retErr = closeErr
			} else {
				retErr = errors.Join(retErr, closeErr)
			}
		}
	}()

	return fn(backend)
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
