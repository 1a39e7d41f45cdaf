package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/spf13/cobra"
)

// workflowCmd walks one image through the full lifecycle and checks each
// step against the previous one.
var workflowCmd = &cobra.Command{
	Use:   "workflow FILE",
	Short: "Runs health, upload, download, info and delete against one image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], readErr)
		}

		return withImageClient(func(cli images.ImageClient) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			step := func(name, detail string) {
				slog.Info("Workflow step done", "step", name)
				fmt.Fprintf(out, "ok\t%s\t%s\n", name, detail)
			}

			health, healthErr := cli.CheckHealth(ctx)
			if healthErr != nil {
				return fmt.Errorf("health: %w", healthErr)
			}
			step("health", health.Status)

			uploaded, uploadErr := cli.Upload(ctx, data)
			if uploadErr != nil {
				return fmt.Errorf("upload: %w", uploadErr)
			}
			step("upload", uploaded.ID)

			img, downloadErr := cli.Download(ctx, uploaded.ID)
			if downloadErr != nil {
				return fmt.Errorf("download: %w", downloadErr)
			}
			if !bytes.Equal(img.Data, data) {
				return fmt.Errorf("download: content of %s differs from %s", uploaded.ID, args[0])
			}
			step("download", img.ContentType)

			info, infoErr := cli.Info(ctx, uploaded.ID)
			if infoErr != nil {
				return fmt.Errorf("info: %w", infoErr)
			}
			if !info.Exists {
				return fmt.Errorf("info: %s does not exist after upload", uploaded.ID)
			}
			step("info", info.ContentType)

			if _, deleteErr := cli.Delete(ctx, uploaded.ID); deleteErr != nil {
				return fmt.Errorf("delete: %w", deleteErr)
			}
			step("delete", uploaded.ID)

			exists, existsErr := cli.Exists(ctx, uploaded.ID)
			if existsErr != nil {
				return fmt.Errorf("verify: %w", existsErr)
			}
			if exists {
				return fmt.Errorf("verify: %s still exists after delete", uploaded.ID)
			}
			step("verify", "deleted")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(workflowCmd)
}
