package player

import (
	"math"
	"testing"
	"time"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		ID:             "76561199396123565",
		Name:           "ColGuy20",
		ProfilePicture: "https://cdn.scoresaber.com/avatars/76561199396123565.jpg",
		Country:        "US",
		PP:             4512.37,
		Rank:           50,
		CountryRank:    12,
		Histories:      "60,55,52,50",
		ScoreStats: ScoreStats{
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

func TestComputeDelta_IdenticalIsZero(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()

	d := ComputeDelta(a, b)
	if !d.IsZero() {
		t.Fatalf("expected zero delta, got %#v", d)
	}
	if got := d.ChangedFields(); len(got) != 0 {
		t.Fatalf("expected no changed fields, got %v", got)
	}
}

func TestComputeDelta_SingleField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		field  Field
		want   float64
	}{
		{"total score", func(s *Snapshot) { s.ScoreStats.TotalScore += 250 }, FieldTotalScore, 250},
		{"ranked score", func(s *Snapshot) { s.ScoreStats.TotalRankedScore -= 10 }, FieldTotalRankedScore, -10},
		{"play count", func(s *Snapshot) { s.ScoreStats.TotalPlayCount += 3 }, FieldTotalPlayCount, 3},
		{"ranked play count", func(s *Snapshot) { s.ScoreStats.RankedPlayCount += 1 }, FieldRankedPlayCount, 1},
		{"replays", func(s *Snapshot) { s.ScoreStats.ReplaysWatched += 2 }, FieldReplaysWatched, 2},
		{"rank", func(s *Snapshot) { s.Rank = 48 }, FieldRank, -2},
		{"country rank", func(s *Snapshot) { s.CountryRank = 15 }, FieldCountryRank, 3},
		{"pp", func(s *Snapshot) { s.PP += 1.5 }, FieldPP, 1.5},
		{"accuracy", func(s *Snapshot) { s.ScoreStats.AverageRankedAccuracy = 92.5 }, FieldAccuracy, 92.5 - 92.1234},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev := baseSnapshot()
			cur := baseSnapshot()
			tc.mutate(&cur)

			d := ComputeDelta(prev, cur)
			changed := d.ChangedFields()
			if len(changed) != 1 || changed[0] != tc.field {
				t.Fatalf("expected only %s to change, got %v", tc.field, changed)
			}
			if got := d.Magnitude(tc.field); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected magnitude %v for %s, got %v", tc.want, tc.field, got)
			}
		})
	}
}

func TestComputeDelta_IgnoresExcludedFields(t *testing.T) {
	prev := baseSnapshot()
	cur := baseSnapshot()
	cur.ID = "someone-else"
	cur.Name = "Renamed"
	cur.Country = "DE"
	cur.FirstSeen = cur.FirstSeen.Add(48 * time.Hour)
	cur.Banned = true
	cur.Inactive = true
	cur.ProfilePicture = "https://example.com/new.png"
	cur.Histories = "1,2,3"

	if d := ComputeDelta(prev, cur); !d.IsZero() {
		t.Fatalf("excluded fields leaked into delta: %#v", d)
	}
}

func TestComputeDelta_Antisymmetric(t *testing.T) {
	a := baseSnapshot()
	b := baseSnapshot()
	b.PP = 4600.01
	b.Rank = 41
	b.CountryRank = 9
	b.ScoreStats = ScoreStats{
		TotalScore:            98765,
		TotalRankedScore:      5000,
		AverageRankedAccuracy: 91.0,
		TotalPlayCount:        350,
		RankedPlayCount:       210,
		ReplaysWatched:        1,
	}

	ab := ComputeDelta(a, b)
	ba := ComputeDelta(b, a)
	for _, f := range Fields {
		if ab.Changed(f) != ba.Changed(f) {
			t.Fatalf("%s: changed flag differs between directions", f)
		}
		if ab.Magnitude(f) != -ba.Magnitude(f) {
			t.Fatalf("%s: expected %v == -(%v)", f, ab.Magnitude(f), ba.Magnitude(f))
		}
	}
}

func TestComputeDelta_Scenario(t *testing.T) {
	prev := baseSnapshot()
	cur := baseSnapshot()
	cur.ScoreStats.TotalScore = 1250
	cur.Rank = 48
	cur.ScoreStats.AverageRankedAccuracy = 92.5

	d := ComputeDelta(prev, cur)

	if !d.TotalScore.Changed || d.TotalScore.By != 250 {
		t.Fatalf("total score: got %#v", d.TotalScore)
	}
	if !d.Rank.Changed || d.Rank.By != -2 {
		t.Fatalf("rank: got %#v", d.Rank)
	}
	if !d.Accuracy.Changed {
		t.Fatalf("accuracy should be flagged as changed")
	}
	if got := math.Round(d.Accuracy.By*10_000) / 10_000; got != 0.3766 {
		t.Fatalf("accuracy: expected 0.3766 after rounding, got %v", got)
	}
	if got := len(d.ChangedFields()); got != 3 {
		t.Fatalf("expected exactly 3 changed fields, got %d: %v", got, d.ChangedFields())
	}
}

func TestFieldString(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Fields {
		name := f.String()
		if name == "unknown" || seen[name] {
			t.Fatalf("bad or duplicate field name %q", name)
		}
		seen[name] = true
	}
	if Field(99).String() != "unknown" {
		t.Fatalf("expected unknown for out of range field")
	}
}
