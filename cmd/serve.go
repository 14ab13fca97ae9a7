package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowme/internal/gateway"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot behind the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := buildApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.Config.HTTP.Addr
		}

		srv := gateway.New(gateway.Deps{
			Handler:          a.Dispatcher,
			Outbox:           a.Outbox,
			Stats:            a.Stats,
			Metrics:          a.Metrics,
			DB:               a.Store.DB(),
			Logger:           a.Logger.Named("http"),
			LeaderboardLimit: a.Config.Leaderboard.Limit,
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
