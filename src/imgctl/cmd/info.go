package cmd

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info ID",
	Short: "Shows whether an image exists, its content type and size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImageClient(func(cli images.ImageClient) error {
			info, infoErr := cli.Info(cmd.Context(), args[0])
			if infoErr != nil {
				return fmt.Errorf("failed to get info for %s: %w", args[0], infoErr)
			}

			out := cmd.OutOrStdout()
			if !info.Exists {
				fmt.Fprintf(out, "%s\tnot found\n", info.ID)
				return nil
			}

			size := "unknown"
			if info.ContentLength >= 0 {
				size = datasize.ByteSize(info.ContentLength).HumanReadable()
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", info.ID, info.ContentType, size)
			return nil
		})
	},
}

var existsCmd = &cobra.Command{
	Use:   "exists ID",
	Short: "Prints true if the image exists, false otherwise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImageClient(func(cli images.ImageClient) error {
			exists, existsErr := cli.Exists(cmd.Context(), args[0])
			if existsErr != nil {
				return fmt.Errorf("failed to check %s: %w", args[0], existsErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), exists)
			return nil
		})
	},
}

var urlCmd = &cobra.Command{
	Use:   "url ID",
	Short: "Prints the direct URL of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImageClient(func(cli images.ImageClient) error {
			imageURL, urlErr := cli.ImageURL(args[0])
			if urlErr != nil {
				return urlErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), imageURL)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(urlCmd)
}
