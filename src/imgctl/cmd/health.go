package cmd

import (
	"fmt"

	"github.com/q-controller/imgctl/src/pkg/images"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Checks that the image store is up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withImageClient(func(cli images.ImageClient) error {
			health, healthErr := cli.CheckHealth(cmd.Context())
			if healthErr != nil {
				return fmt.Errorf("health check failed: %w", healthErr)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", health.Status, health.Service)
			if !health.Healthy() {
				return fmt.Errorf("image store reported status %q", health.Status)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
