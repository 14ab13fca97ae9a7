package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowme/internal/bot"
	"github.com/abhisek/knowme/internal/texts"
)

var statsCmd = &cobra.Command{
	Use:   "stats <creator-id>",
	Short: "Show statistics for a creator's tests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creatorID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid creator id %q", args[0])
		}

		a, cleanup, err := buildApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		st, err := a.Stats.CreatorStatistics(cmd.Context(), creatorID)
		if err != nil {
			return err
		}
		if st == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No tests for this creator.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), texts.Stats(bot.StatsView(st)))
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the leaderboard of all takers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := buildApp(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = a.Config.Leaderboard.Limit
		}
		entries, err := a.Stats.Leaderboard(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), texts.Leaderboard(bot.LeaderRows(entries)))
		return nil
	},
}

func init() {
	topCmd.Flags().Int("limit", 0, "Number of entries (default leaderboard.limit)")
}
