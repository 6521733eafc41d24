package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/storage"
)

// linkCmd implements: sstrack link <discord_id> <player_id>
var linkCmd = &cobra.Command{
	Use:   "link <discord_id> <player_id>",
	Short: "Link a Discord user to a stored player",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		playerID := player.NormalizeID(args[1])
		err = db.LinkDiscord(context.Background(), args[0], playerID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("player %s is not stored yet, run 'sstrack stats %s' first", playerID, playerID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Linked %s to %s\n", args[0], playerID)
		return nil
	},
}

// unlinkCmd implements: sstrack unlink <discord_id>
var unlinkCmd = &cobra.Command{
	Use:   "unlink <discord_id>",
	Short: "Remove a Discord user's player link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ok, err := db.UnlinkDiscord(context.Background(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%s has no linked player\n", args[0])
			return nil
		}
		fmt.Printf("Unlinked %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}
