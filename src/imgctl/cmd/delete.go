package cmd

import (
	"fmt"

	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Deletes images; ids that do not exist are reported and skipped",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImageClient(func(cli images.ImageClient) error {
			out := cmd.OutOrStdout()
			for _, id := range args {
				removed, deleteErr := cli.Delete(cmd.Context(), id)
				if deleteErr != nil {
					return fmt.Errorf("failed to delete %s: %w", id, deleteErr)
				}

				status := "deleted"
				if !removed {
					status = "not found"
				}
				fmt.Fprintf(out, "%s\t%s\n", id, status)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
