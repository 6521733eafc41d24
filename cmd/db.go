package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sstrack/sstrack/internal/utils"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the sstrack database",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := utils.GetAbsDBPath(viper.GetString("db_path"))
		if err != nil {
			return err
		}

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// dbStatsCmd represents the db stats command
var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the players in the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, path, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}
		if stats.Players == 0 {
			fmt.Println("No players in the database yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "DATABASE\t%s\t\n", path)
		fmt.Fprintf(w, "PLAYERS\t%d\t\n", stats.Players)
		fmt.Fprintf(w, "LINKED\t%d\t\n", stats.Linked)
		fmt.Fprintf(w, "LAST UPDATE\t%s\t\n", humanize.Time(stats.LastUpdated))
		return w.Flush()
	},
}

// listCmd represents the db list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored players",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		players, err := db.ListPlayers(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOUNTRY\tRANK\tPP\tACCURACY\tDISCORD\tUPDATED\t")
		for _, p := range players {
			s := p.Snapshot
			fmt.Fprintf(w, "%s\t%s\t%s\t#%s\t%.2f\t%.2f%%\t%s\t%s\t\n",
				s.ID, s.Name, s.Country, humanize.Comma(s.Rank), s.PP, s.ScoreStats.AverageRankedAccuracy, p.Discord, humanize.Time(p.UpdatedAt))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(listCmd)
}
