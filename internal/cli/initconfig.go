package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"labelreview/pkg/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Create a default configuration file",
	Args:  usageArgs(cobra.ExactArgs(0)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(flagConfig); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", flagConfig)
			return nil
		}
		if err := config.CreateDefaultConfigFile(flagConfig); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", flagConfig)
		return nil
	},
}
