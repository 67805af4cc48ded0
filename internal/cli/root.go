// Package cli implements the labelreview command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"labelreview/pkg/config"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

var (
	flagConfig      string
	flagLabelList   string
	flagLabelsLayer string
	flagPadding     int
)

var rootCmd = &cobra.Command{
	Use:   "labelreview",
	Short: "Review segmented labels one crop at a time",
	Long: "labelreview steps through a list of label ids in a segmentation, shows each label's " +
		"neighborhood across the configured layers and records a perfect / needs improvement / wrong verdict per label.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultConfigPath, "configuration file")
	rootCmd.PersistentFlags().StringVarP(&flagLabelList, "list", "l", "", "YAML file listing label ids (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLabelsLayer, "labels-layer", "", "labels layer the boxes are computed from (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&flagPadding, "padding", "p", 0, "bounding box padding in voxels (overrides config)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(boxesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run executes the root command and returns an exit code.
func Run() int {
	return run(nil)
}

func run(args []string) int {
	if args != nil {
		rootCmd.SetArgs(args)
	}
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		if isUsageError(cmd, err) {
			return ExitUsageError
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

// usageError marks errors caused by bad invocation rather than bad data
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsageError(cmd *cobra.Command, err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	// Unknown subcommands surface on the non-runnable root
	return cmd == nil || !cmd.Runnable()
}

// usageArgs wraps a cobra argument check so a wrong argument count is a usage error
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("list") {
		cfg.Review.LabelList = flagLabelList
	}
	if flags.Changed("labels-layer") {
		cfg.Review.LabelsLayer = flagLabelsLayer
	}
	if flags.Changed("padding") {
		cfg.Review.Padding = flagPadding
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageError{fmt.Errorf("invalid configuration: %w", err)}
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print labelreview version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "labelreview version %s\n", version)
	},
}
