package player

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"76561199396123565", "76561199396123565"},
		{"  76561199396123565 ", "76561199396123565"},
		{"https://scoresaber.com/u/76561199396123565", "76561199396123565"},
		{"https://scoresaber.com/u/76561199396123565/", "76561199396123565"},
		{"https://scoresaber.com/u/76561199396123565?page=2&sort=top", "76561199396123565"},
		{"https://scoresaber.com/api/player/123/full", "123"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeID(tc.in); got != tc.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
