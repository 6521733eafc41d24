package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sstrack/sstrack/pkg/player"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sstrack.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot(id string) player.Snapshot {
	return player.Snapshot{
		ID:             id,
		Name:           "ColGuy20",
		ProfilePicture: "https://cdn.scoresaber.com/avatars/" + id + ".jpg",
		Country:        "US",
		PP:             4512.37,
		Rank:           50,
		CountryRank:    12,
		Histories:      "60,55,52,50",
		Inactive:       true,
		ScoreStats: player.ScoreStats{
			TotalScore:            1000,
			TotalRankedScore:      800,
			AverageRankedAccuracy: 92.1234,
			TotalPlayCount:        300,
			RankedPlayCount:       200,
			ReplaysWatched:        7,
		},
		FirstSeen: time.Date(2022, 7, 29, 2, 28, 24, 0, time.UTC),
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetPlayer(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertPlayer_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	want := sampleSnapshot("1")
	if err := db.UpsertPlayer(ctx, want); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	got, err := db.GetPlayer(ctx, "1")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if !got.FirstSeen.Equal(want.FirstSeen) {
		t.Fatalf("first seen: got %v, want %v", got.FirstSeen, want.FirstSeen)
	}
	got.FirstSeen, want.FirstSeen = time.Time{}, time.Time{}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestUpsertPlayer_ReplacesStatsAndKeepsLink(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := sampleSnapshot("1")
	if err := db.UpsertPlayer(ctx, first); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	if err := db.LinkDiscord(ctx, "discord-user", "1"); err != nil {
		t.Fatalf("LinkDiscord: %v", err)
	}

	second := first
	second.ScoreStats.TotalScore = 1250
	second.Rank = 48
	if err := db.UpsertPlayer(ctx, second); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}

	got, err := db.GetPlayer(ctx, "1")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if got.ScoreStats.TotalScore != 1250 || got.Rank != 48 {
		t.Fatalf("stats not replaced: %#v", got)
	}
	id, err := db.LinkedPlayer(ctx, "discord-user")
	if err != nil || id != "1" {
		t.Fatalf("expected link to survive upsert, got %q, %v", id, err)
	}

	players, err := db.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("ListPlayers: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("expected one row per id, got %d", len(players))
	}
	if players[0].Discord != "discord-user" || players[0].UpdatedAt.IsZero() {
		t.Fatalf("unexpected record %#v", players[0])
	}
}

func TestUpsertPlayer_EmptyID(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertPlayer(context.Background(), player.Snapshot{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestLinkDiscord(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for _, id := range []string{"1", "2"} {
		if err := db.UpsertPlayer(ctx, sampleSnapshot(id)); err != nil {
			t.Fatalf("UpsertPlayer: %v", err)
		}
	}

	if err := db.LinkDiscord(ctx, "u", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound linking unknown player, got %v", err)
	}

	if err := db.LinkDiscord(ctx, "u", "1"); err != nil {
		t.Fatalf("LinkDiscord: %v", err)
	}
	// Relinking moves the association.
	if err := db.LinkDiscord(ctx, "u", "2"); err != nil {
		t.Fatalf("LinkDiscord: %v", err)
	}
	if id, err := db.LinkedPlayer(ctx, "u"); err != nil || id != "2" {
		t.Fatalf("expected link to 2, got %q, %v", id, err)
	}

	st, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if st.Players != 2 || st.Linked != 1 || st.LastUpdated.IsZero() {
		t.Fatalf("unexpected stats %#v", st)
	}

	ok, err := db.UnlinkDiscord(ctx, "u")
	if err != nil || !ok {
		t.Fatalf("UnlinkDiscord: %v, %v", ok, err)
	}
	ok, err = db.UnlinkDiscord(ctx, "u")
	if err != nil || ok {
		t.Fatalf("second UnlinkDiscord should report no link: %v, %v", ok, err)
	}
	if _, err := db.LinkedPlayer(ctx, "u"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after unlink, got %v", err)
	}
}
