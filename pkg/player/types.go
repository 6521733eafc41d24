package player

import "time"

// ScoreStats holds the score counters nested in a player document.
type ScoreStats struct {
	TotalScore            int64   `json:"totalScore"`
	TotalRankedScore      int64   `json:"totalRankedScore"`
	AverageRankedAccuracy float64 `json:"averageRankedAccuracy"` // 0-100
	TotalPlayCount        int64   `json:"totalPlayCount"`
	RankedPlayCount       int64   `json:"rankedPlayCount"`
	ReplaysWatched        int64   `json:"replaysWatched"`
}

// Snapshot is one polled observation of a player's statistics.
// ID is the natural key: at most one Snapshot per ID is stored.
type Snapshot struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ProfilePicture string     `json:"profilePicture"`
	Country        string     `json:"country"`
	PP             float64    `json:"pp"`
	Rank           int64      `json:"rank"`
	CountryRank    int64      `json:"countryRank"`
	Histories      string     `json:"histories"`
	Banned         bool       `json:"banned"`
	Inactive       bool       `json:"inactive"`
	ScoreStats     ScoreStats `json:"scoreStats"`
	FirstSeen      time.Time  `json:"firstSeen"`
}

// Candidate is a single name search hit.
type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
