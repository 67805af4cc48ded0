package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type boxEntry struct {
	Label    uint64    `yaml:"label"`
	Box      [][2]int  `yaml:"box,flow"`
	Area     int       `yaml:"area"`
	Centroid []float64 `yaml:"centroid,flow"`
}

type boxReport struct {
	Padding int        `yaml:"padding"`
	Boxes   []boxEntry `yaml:"boxes"`
	Missing []uint64   `yaml:"missing,flow,omitempty"`
}

var boxesCmd = &cobra.Command{
	Use:   "boxes",
	Short: "Print the padded bounding box, size and centroid of every listed label",
	Args:  usageArgs(cobra.ExactArgs(0)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Output.Verbose = false

		_, plan, err := prepare(cfg)
		if err != nil {
			return err
		}

		report := boxReport{Padding: cfg.Review.Padding, Missing: plan.Missing()}
		for _, lbl := range plan.Labels {
			box, ok := plan.Boxes[lbl]
			if !ok {
				continue
			}
			reg := plan.Regions[lbl]
			entry := boxEntry{Label: lbl, Area: reg.Area}
			for _, c := range reg.Centroid {
				entry.Centroid = append(entry.Centroid, math.Round(c*100)/100)
			}
			for _, iv := range box {
				entry.Box = append(entry.Box, [2]int{iv.Start, iv.Stop})
			}
			report.Boxes = append(report.Boxes, entry)
		}

		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("error marshaling boxes: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
