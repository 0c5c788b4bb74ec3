package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var isDebug bool

var rootCmd = &cobra.Command{
	Use:   "extractctl",
	Short: "Extract structured fields from PDF documents",
	Long: `extractctl runs local PDF files through the same extraction pipeline as the
HTTP service and prints or saves the batch result.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}
