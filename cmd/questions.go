package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowme/internal/questions"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Inspect question banks",
}

var questionsCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a question bank file (the built-in bank without a path)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		bank, err := questions.Load(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		version := bank.Version()
		if version == "" {
			version = "unversioned"
		}
		fmt.Fprintf(out, "OK: %d questions (%s)\n", bank.Count(), version)
		for i, q := range bank.All() {
			fmt.Fprintf(out, "%3d. [%s] %s (%d options)\n", i+1, q.ID, q.Text, len(q.Options))
		}
		return nil
	},
}

func init() {
	questionsCmd.AddCommand(questionsCheckCmd)
}
