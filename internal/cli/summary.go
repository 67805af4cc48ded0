package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"labelreview/internal/models"
	"labelreview/pkg/labellist"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [result-file]",
	Short: "Count verdicts in a result file",
	Long:  "Reads a verdict file. Without an argument, the result file next to the configured label list is used.",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Review.LabelList == "" {
				return usageError{fmt.Errorf("no result file given and no label list configured")}
			}
			path = labellist.ResultPath(cfg.Review.LabelList)
		}

		verdicts, err := labellist.ReadVerdicts(path)
		if err != nil {
			return err
		}
		s := labellist.Summarize(verdicts)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d labels judged\n", path, s.Total)
		for _, v := range models.Verdicts {
			pct := 0.0
			if s.Total > 0 {
				pct = 100 * float64(s.Counts[v]) / float64(s.Total)
			}
			fmt.Fprintf(out, "  %d %-18s %5d (%.1f%%)\n", int(v), v, s.Counts[v], pct)
		}
		return nil
	},
}
