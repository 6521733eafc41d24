package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// searchCmd implements: sstrack search <name>
var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Look up player ids by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newHTTPClient(cmd)
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		found, err := newProvider(client).SearchByName(context.Background(), query)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Printf("No players found matching %q.\n", query)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\t")
		for _, c := range found {
			fmt.Fprintf(w, "%s\t%s\t\n", c.ID, c.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
