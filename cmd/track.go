package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/tracking"
)

// trackCmd implements: sstrack track <player_id> [--interval 30s]
var trackCmd = &cobra.Command{
	Use:   "track <player_id>",
	Short: "Poll a player on a timer until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval == 0 {
			interval = viper.GetDuration("tracking.default_interval")
		}
		console, _ := cmd.Flags().GetBool("console")
		contextID, _ := cmd.Flags().GetString("context")
		id := player.NormalizeID(args[0])

		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := newHTTPClient(cmd)
		if err != nil {
			return err
		}

		tr := tracking.New(tracking.Config{
			Provider: newProvider(client),
			Store:    db,
			Notifier: newNotifier(client, console),
			Renderer: newRenderer(),
			Log:      utils.PlayerLog(contextID, id),
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := tr.Start(ctx, contextID, id, interval); err != nil {
			_ = tr.Shutdown(context.Background())
			return err
		}
		utils.Log.Infof("Tracking %s every %s, press Ctrl+C to stop", id, interval)

		// Poll the session so a terminated loop also ends the command.
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
	wait:
		for {
			select {
			case <-ctx.Done():
				break wait
			case <-ticker.C:
				if tr.Status(contextID) != tracking.Running {
					break wait
				}
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tr.Shutdown(shutdownCtx); err != nil {
			return err
		}

		info, _ := tr.Session(contextID)
		utils.Log.Infof("Tracking ended after %d successful polls", info.SuccessCount)
		if ctx.Err() == nil && info.LastErr != nil {
			return fmt.Errorf("tracking stopped: %w", info.LastErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().Duration("interval", 0, "Time between polls (minimum 5s, default from tracking.default_interval)")
	trackCmd.Flags().Bool("console", false, "Also print rendered messages to stdout")
	trackCmd.Flags().String("context", "cli", "Context id used to pick the webhook from 'webhooks'")
}
