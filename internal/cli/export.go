package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"labelreview/pkg/review"
	"labelreview/pkg/visualization"
)

var flagExportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the crop of every listed label to PNG",
	Long:  "Writes label_<id>.png for each listed label, showing the middle plane of its crop with the label highlighted.",
	Args:  usageArgs(cobra.ExactArgs(0)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ws, plan, err := prepare(cfg)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(flagExportDir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}

		viewer := visualization.NewViewer(cfg.Display.LabelOpacity, cfg.Display.HighlightOpacity)
		written := 0
		for _, lbl := range plan.Labels {
			box, ok := plan.Boxes[lbl]
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: label %d not found in layer %q\n", lbl, ws.source.Name)
				continue
			}

			layers, err := review.ComposeCrop(box, ws.layers, ws.source.Labels, lbl)
			if err != nil {
				return fmt.Errorf("label %d: %w", lbl, err)
			}
			img, err := viewer.Render(layers, visualization.Planes(layers)/2)
			if err != nil {
				return fmt.Errorf("label %d: %w", lbl, err)
			}

			filename := filepath.Join(flagExportDir, fmt.Sprintf("label_%d.png", lbl))
			if err := viewer.SavePNG(img, filename); err != nil {
				return fmt.Errorf("label %d: %w", lbl, err)
			}
			written++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d crops to %s\n", written, flagExportDir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportDir, "out", "o", "crops", "output directory")
}
