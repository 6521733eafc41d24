package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/polling"
	"github.com/sstrack/sstrack/pkg/provider/scoresaber"
	"github.com/sstrack/sstrack/pkg/storage"
)

func main() {
	// Usage: go run *.go -id 76561199396123565 [-db ./example.sqlite]
	// Run it twice to see the deltas against the stored snapshot.

	idFlag := flag.String("id", "", "ScoreSaber player ID or profile URL")
	dbFlag := flag.String("db", filepath.Join(os.TempDir(), "sstrack-example.sqlite"), "SQLite database path")

	// Parse the command-line flags
	flag.Parse()

	if *idFlag == "" {
		fmt.Println("Player ID is required. Please provide it using -id flag.")
		return
	}

	db, err := storage.Open(*dbFlag)
	if err != nil {
		fmt.Println("Could not open database:", err)
		os.Exit(1)
	}
	defer db.Close()

	res, err := polling.PollPlayer(context.Background(), polling.Config{
		Provider:  scoresaber.New(scoresaber.Options{}),
		Store:     db,
		Notifier:  &notify.Console{W: os.Stdout},
		Renderer:  notify.Renderer{Highlights: notify.DefaultHighlights},
		ContextID: "example",
		PlayerID:  player.NormalizeID(*idFlag),
	})
	if err != nil {
		fmt.Println("Fetch failed:", err)
		os.Exit(1)
	}

	for _, f := range res.Delta.ChangedFields() {
		fmt.Printf("%s changed by %v\n", f, res.Delta.Magnitude(f))
	}
}
