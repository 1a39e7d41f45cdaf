package cmd

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/q-controller/imgctl/src/pkg/utils"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download ID...",
	Short: "Downloads images into a directory, or a single image into a file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, outputErr := cmd.Flags().GetString("output")
		if outputErr != nil {
			return fmt.Errorf("failed to get output: %w", outputErr)
		}
		dir, dirErr := cmd.Flags().GetString("out")
		if dirErr != nil {
			return fmt.Errorf("failed to get out: %w", dirErr)
		}
		if output != "" && len(args) != 1 {
			return fmt.Errorf("--output takes exactly one image id, got %d", len(args))
		}

		return withImageClient(func(cli images.ImageClient) error {
			out := cmd.OutOrStdout()

			if output != "" {
				img, downloadErr := cli.Download(cmd.Context(), args[0])
				if downloadErr != nil {
					return fmt.Errorf("failed to download %s: %w", args[0], downloadErr)
				}
				if writeErr := utils.WriteFileAtomic(output, img.Data); writeErr != nil {
					return writeErr
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", args[0], output, datasize.ByteSize(len(img.Data)).HumanReadable())
				return nil
			}

			results, downloadErr := images.DownloadToDir(cmd.Context(), cli, args, dir)
			if downloadErr != nil {
				return downloadErr
			}
			for _, result := range results {
				if !result.OK() {
					fmt.Fprintf(out, "failed\t%s\t%v\n", result.ID, result.Err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", result.ID, result.Path)
			}
			return batchError("download", results)
		})
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().String("out", ".", "Directory to download images into")
	downloadCmd.Flags().StringP("output", "o", "", "File to write a single image to")
}
