package command

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Request
	}{
		{"/stats 7656", Request{Kind: Stats, Target: "7656"}},
		{"/stats", Request{Kind: Stats}},
		{"/STATS https://scoresaber.com/u/7656", Request{Kind: Stats, Target: "7656"}},
		{"/track 7656 30", Request{Kind: Track, Target: "7656", Interval: 30 * time.Second}},
		{"/track 7656", Request{Kind: Track, Target: "7656"}},
		{"/track 7656 5", Request{Kind: Track, Target: "7656", Interval: 5 * time.Second}},
		{"  /untrack  ", Request{Kind: Untrack}},
		{"/link 7656", Request{Kind: Link, Target: "7656"}},
		{"/unlink", Request{Kind: Unlink}},
		{"/id Col Guy", Request{Kind: ID, Query: "Col Guy"}},
		{"/help", Request{Kind: Help}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Invalid Command"},
		{"/dance", "Invalid Command"},
		{"/stats 1 2", "Incorrect number of fields. (`/stats` `player_id`)"},
		{"/track", "Incorrect number of fields. (`/track` `player_id` `time (seconds)`)"},
		{"/track 1 2 3", "Incorrect number of fields. (`/track` `player_id` `time (seconds)`)"},
		{"/track 1 soon", "Please use a number for *time*. Make sure it is positive. (`/track` `player_id` `time (seconds)`)"},
		{"/track 1 -3", "Please use a number for *time*. Make sure it is positive. (`/track` `player_id` `time (seconds)`)"},
		{"/track 1 4", "Please use a number of 5 seconds or more. (`/track` `player_id` `time (seconds)`)"},
		{"/untrack now", "Incorrect number of fields. (`/untrack`)"},
		{"/link", "Incorrect number of fields. (`/link` `player_id`)"},
		{"/id", "Incorrect number of fields. (`/id` `player name`)"},
	}
	for _, tc := range tests {
		_, err := Parse(tc.in)
		var ue *UsageError
		if !errors.As(err, &ue) {
			t.Errorf("Parse(%q): expected usage error, got %v", tc.in, err)
			continue
		}
		if ue.Text != tc.want {
			t.Errorf("Parse(%q) usage = %q, want %q", tc.in, ue.Text, tc.want)
		}
	}
}
