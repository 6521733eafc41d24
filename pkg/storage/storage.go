package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sstrack/sstrack/pkg/player"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no row exists for the requested key.
var ErrNotFound = errors.New("storage: not found")

type DB struct {
	sql *sql.DB
}

const playerColumns = `id, name, profile_picture, country, pp, rank, country_rank, histories,
  banned, inactive, total_score, total_ranked_score, average_ranked_accuracy,
  total_play_count, ranked_play_count, replays_watched, first_seen`

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS player_data (
  id                      TEXT PRIMARY KEY,
  name                    TEXT NOT NULL,
  profile_picture         TEXT,
  country                 TEXT,
  pp                      REAL NOT NULL DEFAULT 0,
  rank                    INTEGER NOT NULL DEFAULT 0,
  country_rank            INTEGER NOT NULL DEFAULT 0,
  histories               TEXT,
  banned                  INTEGER NOT NULL DEFAULT 0 CHECK (banned IN (0,1)),
  inactive                INTEGER NOT NULL DEFAULT 0 CHECK (inactive IN (0,1)),
  total_score             INTEGER NOT NULL DEFAULT 0,
  total_ranked_score      INTEGER NOT NULL DEFAULT 0,
  average_ranked_accuracy REAL NOT NULL DEFAULT 0,
  total_play_count        INTEGER NOT NULL DEFAULT 0,
  ranked_play_count       INTEGER NOT NULL DEFAULT 0,
  replays_watched         INTEGER NOT NULL DEFAULT 0,
  first_seen              TEXT,
  discord                 TEXT,
  updated_at              TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_player_discord ON player_data(discord) WHERE discord IS NOT NULL;
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// GetPlayer returns the stored snapshot for id, or ErrNotFound.
func (d *DB) GetPlayer(ctx context.Context, id string) (player.Snapshot, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM player_data WHERE id = ?", id)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return player.Snapshot{}, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return s, err
}

// UpsertPlayer replaces every stat column of the row keyed by s.ID. The
// discord link column is never touched.
func (d *DB) UpsertPlayer(ctx context.Context, s player.Snapshot) error {
	if s.ID == "" {
		return fmt.Errorf("upsert player: empty id")
	}
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO player_data(`+playerColumns+`, updated_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  profile_picture = excluded.profile_picture,
  country = excluded.country,
  pp = excluded.pp,
  rank = excluded.rank,
  country_rank = excluded.country_rank,
  histories = excluded.histories,
  banned = excluded.banned,
  inactive = excluded.inactive,
  total_score = excluded.total_score,
  total_ranked_score = excluded.total_ranked_score,
  average_ranked_accuracy = excluded.average_ranked_accuracy,
  total_play_count = excluded.total_play_count,
  ranked_play_count = excluded.ranked_play_count,
  replays_watched = excluded.replays_watched,
  first_seen = excluded.first_seen,
  updated_at = excluded.updated_at`,
		s.ID, s.Name, nullIfEmpty(s.ProfilePicture), nullIfEmpty(s.Country), s.PP, s.Rank, s.CountryRank, nullIfEmpty(s.Histories),
		boolToInt(s.Banned), boolToInt(s.Inactive),
		s.ScoreStats.TotalScore, s.ScoreStats.TotalRankedScore, s.ScoreStats.AverageRankedAccuracy,
		s.ScoreStats.TotalPlayCount, s.ScoreStats.RankedPlayCount, s.ScoreStats.ReplaysWatched,
		formatTime(s.FirstSeen), formatTime(time.Now()),
	)
	return err
}

// ListPlayers returns every stored player ordered by global rank.
func (d *DB) ListPlayers(ctx context.Context) ([]PlayerRecord, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+playerColumns+", discord, updated_at FROM player_data ORDER BY rank = 0, rank, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var (
			rec       PlayerRecord
			discord   sql.NullString
			updatedAt string
		)
		rec.Snapshot, err = scanSnapshot(rows, &discord, &updatedAt)
		if err != nil {
			return nil, err
		}
		rec.Discord = discord.String
		rec.UpdatedAt = parseTime(updatedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetStats summarizes the table for `sstrack db stats`.
func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		last sql.NullString
	)
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(discord), MAX(updated_at) FROM player_data`).Scan(&st.Players, &st.Linked, &last)
	if err != nil {
		return Stats{}, err
	}
	st.LastUpdated = parseTime(last.String)
	return st, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(r scanner, extra ...interface{}) (player.Snapshot, error) {
	var (
		s                         player.Snapshot
		pic, country, hist, first sql.NullString
		banned, inactive          int
	)
	dest := []interface{}{
		&s.ID, &s.Name, &pic, &country, &s.PP, &s.Rank, &s.CountryRank, &hist,
		&banned, &inactive,
		&s.ScoreStats.TotalScore, &s.ScoreStats.TotalRankedScore, &s.ScoreStats.AverageRankedAccuracy,
		&s.ScoreStats.TotalPlayCount, &s.ScoreStats.RankedPlayCount, &s.ScoreStats.ReplaysWatched,
		&first,
	}
	if err := r.Scan(append(dest, extra...)...); err != nil {
		return player.Snapshot{}, err
	}
	s.ProfilePicture = pic.String
	s.Country = country.String
	s.Histories = hist.String
	s.Banned = banned == 1
	s.Inactive = inactive == 1
	s.FirstSeen = parseTime(first.String)
	return s, nil
}
