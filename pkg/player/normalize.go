package player

import (
	"net/url"
	"strings"
)

// NormalizeID accepts a bare player id or a ScoreSaber profile URL
// (https://scoresaber.com/u/<id>) and returns the id.
func NormalizeID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(parts); i++ {
			if parts[i] == "u" || parts[i] == "player" {
				return parts[i+1]
			}
		}
		return parts[len(parts)-1]
	}
	return strings.TrimSuffix(s, "/")
}
