package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var opts runOptions

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "fonarchive",
		Short: "Archive fonts from the Adobe font cache",
		Long: `fonarchive copies the fonts synced by Adobe Creative Cloud out of the
livetype cache, checks that each one is a real TrueType or OpenType file,
names it after its family, weight, and style, and files it into
<output-dir>/<family>/. A metadata.csv manifest and a run log are written
next to the families.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, ctx, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Archive folder (default: <Desktop>/FONarchive)")
	rootCmd.Flags().StringVar(&opts.sourceDir, "source-dir", "", "Font cache to read instead of the account's livetype folder")
	rootCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Answer every question with its default")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
