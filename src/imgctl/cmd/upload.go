package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/c2h5oh/datasize"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/q-controller/imgctl/src/pkg/utils"
	"github.com/spf13/cobra"
)

const stdinPath = "-"

var uploadCmd = &cobra.Command{
	Use:   "upload [FILE...]",
	Short: "Uploads images from files, stdin (-) or a remote URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		fromURL, fromURLErr := cmd.Flags().GetString("from-url")
		if fromURLErr != nil {
			return fmt.Errorf("failed to get from-url: %w", fromURLErr)
		}
		if fromURL == "" && len(args) == 0 {
			return fmt.Errorf("nothing to upload: pass files, - for stdin, or --from-url")
		}
		showProgress, showProgressErr := cmd.Flags().GetBool("progress")
		if showProgressErr != nil {
			return fmt.Errorf("failed to get progress: %w", showProgressErr)
		}

		var extra []images.Option
		if showProgress {
			extra = append(extra, images.WithProgress(progressPrinter(cmd.ErrOrStderr())))
		}

		return withImageClient(func(cli images.ImageClient) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if fromURL != "" {
				result, uploadErr := uploadFromURL(ctx, cli, fromURL)
				if uploadErr != nil {
					return uploadErr
				}
				printUpload(out, fromURL, result)
			}

			var files []string
			for _, arg := range args {
				if arg != stdinPath {
					files = append(files, arg)
					continue
				}

				data, readErr := io.ReadAll(cmd.InOrStdin())
				if readErr != nil {
					return fmt.Errorf("failed to read stdin: %w", readErr)
				}
				result, uploadErr := cli.Upload(ctx, data)
				if uploadErr != nil {
					return fmt.Errorf("failed to upload stdin: %w", uploadErr)
				}
				printUpload(out, stdinPath, result)
			}

			if len(files) == 0 {
				return nil
			}

			results := images.UploadFiles(ctx, cli, files)
			for _, result := range results {
				if !result.OK() {
					fmt.Fprintf(out, "failed\t%s\t%v\n", result.Source, result.Err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", result.ID, result.Source)
			}
			return batchError("upload", results)
		}, extra...)
	},
}

// progressPrinter writes one line per completed upload and a running count
// while bytes are sent.
func progressPrinter(w io.Writer) func(sent, total int64) {
	return func(sent, total int64) {
		fmt.Fprintf(w, "\ruploading %s / %s", datasize.ByteSize(sent).HumanReadable(), datasize.ByteSize(total).HumanReadable())
		if sent == total {
			fmt.Fprintln(w)
		}
	}
}

func uploadFromURL(ctx context.Context, cli images.ImageClient, rawURL string) (*images.UploadResult, error) {
	fetched, fetchErr := utils.FetchURL(ctx, settings.HTTPClient(), rawURL, int64(settings.MaxDownloadSize.Bytes()))
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, fetchErr)
	}
	slog.Debug("Fetched remote image", "url", rawURL, "content_type", fetched.ContentType, "size", len(fetched.Data))

	result, uploadErr := cli.Upload(ctx, fetched.Data)
	if uploadErr != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", rawURL, uploadErr)
	}
	return result, nil
}

func printUpload(out io.Writer, source string, result *images.UploadResult) {
	fmt.Fprintf(out, "%s\t%s\t%s\n", result.ID, result.Status, source)
}

func batchError(op string, results []images.BatchResult) error {
	_, failed := images.Summarize(results)
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d %ss failed", failed, len(results), op)
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().String("from-url", "", "Fetch the image from this http(s) URL and upload it")
	uploadCmd.Flags().Bool("progress", false, "Print upload progress to stderr")
}
