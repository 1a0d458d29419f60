package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/tracing"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <file.sqlite3>",
	Short: "Print the run summaries stored by `run --record`.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader := datarecording.NewReader(args[0])
		defer reader.Close()

		summaries, err := tracing.ReadRunSummaries(context.Background(), reader)
		if err != nil {
			return err
		}

		for _, s := range summaries {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
