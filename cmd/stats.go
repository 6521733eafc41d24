package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/polling"
)

// statsCmd implements: sstrack stats <player_id>...
var statsCmd = &cobra.Command{
	Use:   "stats <player_id>...",
	Short: "Fetch players once, store them and post their stats",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		console, _ := cmd.Flags().GetBool("console")
		contextID, _ := cmd.Flags().GetString("context")

		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		client, err := newHTTPClient(cmd)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(args))
		for _, a := range args {
			ids = append(ids, player.NormalizeID(a))
		}

		cfg := polling.Config{
			Provider:  newProvider(client),
			Store:     db,
			Notifier:  newNotifier(client, console),
			Renderer:  newRenderer(),
			ContextID: contextID,
			Log:       utils.Log.WithField("context", contextID),
		}
		outcomes := polling.PollPlayers(context.Background(), cfg, ids, concurrency)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tRANK\tPP\tTOTAL SCORE\tCHANGED\t")
		var failed int
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				reason := "fetch failed"
				if errors.Is(o.Err, context.Canceled) {
					reason = "cancelled"
				}
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s: %v\t\n", o.PlayerID, reason, o.Err)
				continue
			}
			s := o.Result.Snapshot
			fmt.Fprintf(w, "%s\t%s\t#%s\t%.2f\t%s\t%s\t\n", s.ID, s.Name, humanize.Comma(s.Rank), s.PP, humanize.Comma(s.ScoreStats.TotalScore), changedSummary(o.Result))
		}
		w.Flush()

		if failed > 0 {
			return fmt.Errorf("%d of %d players could not be fetched", failed, len(outcomes))
		}
		return nil
	},
}

func changedSummary(r *polling.Result) string {
	if r.IsNew {
		return "new"
	}
	fields := r.Delta.ChangedFields()
	if len(fields) == 0 {
		return "-"
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ",")
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Int("concurrency", 5, "Number of concurrent player fetches")
	statsCmd.Flags().Bool("console", false, "Also print rendered messages to stdout")
	statsCmd.Flags().String("context", "cli", "Context id used to pick the webhook from 'webhooks'")
}
