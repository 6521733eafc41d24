package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LinkDiscord associates discordID with a stored player. A discord user is
// linked to at most one player, so any previous link is cleared first.
func (d *DB) LinkDiscord(ctx context.Context, discordID, playerID string) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, "SELECT 1 FROM player_data WHERE id = ?", playerID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE player_data SET discord = NULL WHERE discord = ?", discordID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE player_data SET discord = ? WHERE id = ?", discordID, playerID); err != nil {
		return err
	}
	return tx.Commit()
}

// UnlinkDiscord clears the link for discordID and reports whether one existed.
func (d *DB) UnlinkDiscord(ctx context.Context, discordID string) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "UPDATE player_data SET discord = NULL WHERE discord = ?", discordID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// LinkedPlayer returns the player id linked to discordID, or ErrNotFound.
func (d *DB) LinkedPlayer(ctx context.Context, discordID string) (string, error) {
	var id string
	err := d.sql.QueryRowContext(ctx, "SELECT id FROM player_data WHERE discord = ?", discordID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("discord user %s: %w", discordID, ErrNotFound)
	}
	return id, err
}
