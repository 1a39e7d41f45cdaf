package cmd

import (
	"fmt"

	"github.com/q-controller/imgctl/src/imgctl/cmd/utils"
	"github.com/spf13/cobra"
)

var openapiCmd = &cobra.Command{
	Use:    "openapi",
	Short:  "Produces the OpenAPI specification of the image store API imgctl talks to",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		bytes, bytesErr := utils.GenerateOpenAPISpecs(cmd.Context())
		if bytesErr != nil {
			return fmt.Errorf("failed to generate OpenAPI specs: %w", bytesErr)
		}

		fmt.Fprint(cmd.OutOrStdout(), bytes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openapiCmd)
}
