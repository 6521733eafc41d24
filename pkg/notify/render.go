package notify

import (
	"fmt"
	"strings"

	"github.com/sstrack/sstrack/pkg/player"
)

// Renderer turns a snapshot and its delta into a stats embed.
type Renderer struct {
	// Color is the embed color for players without a highlight.
	Color int
	// Highlights maps a player name to its embed color. Names match
	// case-insensitively.
	Highlights map[string]int
}

// DefaultHighlights gives the bot author's profile a dark red embed.
var DefaultHighlights = map[string]int{"ColGuy20": 5505024}

func (r Renderer) color(name string) int {
	if c, ok := r.Highlights[name]; ok {
		return c
	}
	// Config loaders lowercase map keys.
	for n, c := range r.Highlights {
		if strings.EqualFold(n, name) {
			return c
		}
	}
	return r.Color
}

// Render builds the stats embed for s. Delta suffixes are appended only for
// changed fields and never for a new player. Render is deterministic.
func (r Renderer) Render(s player.Snapshot, d player.Delta, isNew bool) Message {
	stats := s.ScoreStats

	totalScore := AddCommas(stats.TotalScore, false)
	rankedScore := AddCommas(stats.TotalRankedScore, false)
	totalPlays := AddCommas(stats.TotalPlayCount, false)
	rankedPlays := AddCommas(stats.RankedPlayCount, false)
	rank := AddCommas(s.Rank, false)
	countryRank := AddCommas(s.CountryRank, false)
	pp := formatFloat(s.PP)
	accuracy := formatFloat(round4(stats.AverageRankedAccuracy))

	if !isNew {
		totalScore += intSuffix("\n", d.TotalScore)
		rankedScore += intSuffix("\n", d.TotalRankedScore)
		totalPlays += intSuffix(" ", d.TotalPlayCount)
		rankedPlays += intSuffix(" ", d.RankedPlayCount)
		rank += intSuffix(" ", d.Rank)
		countryRank += intSuffix(" ", d.CountryRank)
		pp += floatSuffix(d.PP)
		accuracy += floatSuffix(d.Accuracy)
	}

	firstSeen := ""
	if !s.FirstSeen.IsZero() {
		firstSeen = s.FirstSeen.UTC().Format("2006-01-02")
	}

	spacer := EmbedField{}
	return Message{Embeds: []Embed{{
		Color: r.color(s.Name),
		Author: &EmbedAuthor{
			Name:    fmt.Sprintf("%s #%d", s.Name, s.Rank),
			IconURL: s.ProfilePicture,
		},
		Fields: []EmbedField{
			{Name: "Description", Value: fmt.Sprintf("Rank: **#%s**\nCountry Rank (%s): **#%s**\nFirst Seen: %s", rank, s.Country, countryRank, firstSeen)},
			spacer,
			{Name: "Total Score", Value: totalScore, Inline: true},
			{Name: "Total Ranked Score", Value: rankedScore, Inline: true},
			spacer,
			{Name: "Average Ranked Accuracy", Value: "%" + accuracy, Inline: true},
			{Name: "Performance Point (PP)", Value: pp, Inline: true},
			spacer,
			{Name: "Ranked Play Count", Value: rankedPlays + " ", Inline: true},
			{Name: "Total Play Count", Value: totalPlays + " ", Inline: true},
		},
	}}}
}

func intSuffix(sep string, c player.IntChange) string {
	if !c.Changed {
		return ""
	}
	return sep + "`" + AddCommas(c.By, true) + "`"
}

func floatSuffix(c player.FloatChange) string {
	if !c.Changed {
		return ""
	}
	return "\n`" + signedFloat(round4(c.By)) + "`"
}
