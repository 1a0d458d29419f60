package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/arqsim/config"
)

var promptOpts runOptions

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Ask for the simulation parameters on the terminal and run.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Prompt(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}

		return runSimulation(cfg, promptOpts)
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)

	addRunOptionFlags(promptCmd, &promptOpts)
}
