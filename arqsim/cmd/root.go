// Package cmd provides the command-line interface of arqsim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arqsim",
	Short: "arqsim simulates reliable data transfer over a lossy channel.",
	Long: `arqsim simulates an alternating-bit or Go-Back-N sender and ` +
		`receiver connected by a channel that loses and corrupts packets. ` +
		`Runs are deterministic for a given seed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
