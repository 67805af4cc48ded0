package cli

import (
	"github.com/spf13/cobra"

	"labelreview/internal/ui"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Open the review window",
	Long: "Loads the configured layers and opens a control panel. Starting a review opens a second " +
		"window; press 1 (perfect), 2 (needs improvement) or 3 (wrong) to judge each label.",
	Args: usageArgs(cobra.ExactArgs(0)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		layers, err := loadLayers(cfg)
		if err != nil {
			return err
		}

		app := ui.CreateApp(cfg, layers)
		app.Run()
		return nil
	},
}
