package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowme/internal/bot"
	"github.com/abhisek/knowme/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Chat with the bot in the terminal",
	Long: "Chat with the bot in the terminal. Type /as <id> <name> to switch user,\n" +
		"so you can create a test as one person and take it as another.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, cleanup, err := buildApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		id, _ := cmd.Flags().GetInt64("user-id")
		if id <= 0 {
			return fmt.Errorf("--user-id must be positive, got %d", id)
		}
		name, _ := cmd.Flags().GetString("name")

		return console.Run(ctx, a.Dispatcher, a.Outbox, bot.User{ID: id, FirstName: name, Username: name})
	},
}

func init() {
	consoleCmd.Flags().Int64("user-id", 1, "Identity to start chatting as")
	consoleCmd.Flags().String("name", "me", "Display name of the starting identity")
}
