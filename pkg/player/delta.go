package player

// Field names one comparable statistic.
type Field int

const (
	FieldPP Field = iota
	FieldRank
	FieldCountryRank
	FieldTotalScore
	FieldTotalRankedScore
	FieldTotalPlayCount
	FieldRankedPlayCount
	FieldReplaysWatched
	FieldAccuracy
)

// Fields lists every comparable field in display order.
var Fields = []Field{
	FieldPP,
	FieldRank,
	FieldCountryRank,
	FieldTotalScore,
	FieldTotalRankedScore,
	FieldTotalPlayCount,
	FieldRankedPlayCount,
	FieldReplaysWatched,
	FieldAccuracy,
}

func (f Field) String() string {
	switch f {
	case FieldPP:
		return "pp"
	case FieldRank:
		return "rank"
	case FieldCountryRank:
		return "countryRank"
	case FieldTotalScore:
		return "totalScore"
	case FieldTotalRankedScore:
		return "totalRankedScore"
	case FieldTotalPlayCount:
		return "totalPlayCount"
	case FieldRankedPlayCount:
		return "rankedPlayCount"
	case FieldReplaysWatched:
		return "replaysWatched"
	case FieldAccuracy:
		return "averageRankedAccuracy"
	}
	return "unknown"
}

// IntChange records whether an integer field moved and by how much (new - old).
type IntChange struct {
	Changed bool
	By      int64
}

// FloatChange records whether a floating point field moved and by how much.
type FloatChange struct {
	Changed bool
	By      float64
}

// Delta is the field-level difference between two Snapshots of the same
// player. The zero value means "nothing changed" and is also what a newly
// seen player gets. A Delta is never persisted.
type Delta struct {
	PP               FloatChange
	Rank             IntChange
	CountryRank      IntChange
	TotalScore       IntChange
	TotalRankedScore IntChange
	TotalPlayCount   IntChange
	RankedPlayCount  IntChange
	ReplaysWatched   IntChange
	Accuracy         FloatChange
}

// ComputeDelta compares the comparable fields of prev and cur. Identity and
// metadata fields (ID, Name, Country, FirstSeen, Banned, Inactive,
// ProfilePicture, Histories) are never looked at, so renames or country moves
// are invisible here. The caller must make sure both snapshots belong to the
// same player and must not call it for a player with no previous snapshot.
func ComputeDelta(prev, cur Snapshot) Delta {
	return Delta{
		PP:               compareFloat(prev.PP, cur.PP),
		Rank:             compareInt(prev.Rank, cur.Rank),
		CountryRank:      compareInt(prev.CountryRank, cur.CountryRank),
		TotalScore:       compareInt(prev.ScoreStats.TotalScore, cur.ScoreStats.TotalScore),
		TotalRankedScore: compareInt(prev.ScoreStats.TotalRankedScore, cur.ScoreStats.TotalRankedScore),
		TotalPlayCount:   compareInt(prev.ScoreStats.TotalPlayCount, cur.ScoreStats.TotalPlayCount),
		RankedPlayCount:  compareInt(prev.ScoreStats.RankedPlayCount, cur.ScoreStats.RankedPlayCount),
		ReplaysWatched:   compareInt(prev.ScoreStats.ReplaysWatched, cur.ScoreStats.ReplaysWatched),
		Accuracy:         compareFloat(prev.ScoreStats.AverageRankedAccuracy, cur.ScoreStats.AverageRankedAccuracy),
	}
}

func compareInt(before, after int64) IntChange {
	if before == after {
		return IntChange{}
	}
	return IntChange{Changed: true, By: after - before}
}

func compareFloat(before, after float64) FloatChange {
	if before == after {
		return FloatChange{}
	}
	return FloatChange{Changed: true, By: after - before}
}

// Changed reports whether field f moved.
func (d Delta) Changed(f Field) bool {
	switch f {
	case FieldPP:
		return d.PP.Changed
	case FieldAccuracy:
		return d.Accuracy.Changed
	}
	if c, ok := d.intChange(f); ok {
		return c.Changed
	}
	return false
}

// Magnitude returns the signed change of field f as a float64.
func (d Delta) Magnitude(f Field) float64 {
	switch f {
	case FieldPP:
		return d.PP.By
	case FieldAccuracy:
		return d.Accuracy.By
	}
	if c, ok := d.intChange(f); ok {
		return float64(c.By)
	}
	return 0
}

func (d Delta) intChange(f Field) (IntChange, bool) {
	switch f {
	case FieldRank:
		return d.Rank, true
	case FieldCountryRank:
		return d.CountryRank, true
	case FieldTotalScore:
		return d.TotalScore, true
	case FieldTotalRankedScore:
		return d.TotalRankedScore, true
	case FieldTotalPlayCount:
		return d.TotalPlayCount, true
	case FieldRankedPlayCount:
		return d.RankedPlayCount, true
	case FieldReplaysWatched:
		return d.ReplaysWatched, true
	}
	return IntChange{}, false
}

// IsZero reports whether no field changed.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// ChangedFields returns the fields that moved, in Fields order.
func (d Delta) ChangedFields() []Field {
	var out []Field
	for _, f := range Fields {
		if d.Changed(f) {
			out = append(out, f)
		}
	}
	return out
}
