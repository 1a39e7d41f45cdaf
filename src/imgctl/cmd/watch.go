package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/q-controller/imgctl/src/pkg/utils"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Uploads every file created in a directory until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImageClient(func(cli images.ImageClient) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			slog.Info("Watching directory", "dir", args[0])
			return utils.WatchNewFiles(ctx, args[0], func(path string) error {
				data, readErr := os.ReadFile(path)
				if readErr != nil {
					return fmt.Errorf("failed to read %s: %w", path, readErr)
				}
				if len(data) == 0 {
					slog.Debug("Skipping empty file", "path", path)
					return nil
				}

				result, uploadErr := cli.Upload(ctx, data)
				if uploadErr != nil {
					return fmt.Errorf("failed to upload %s: %w", path, uploadErr)
				}
				printUpload(out, path, result)
				return nil
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
