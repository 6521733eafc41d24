package scoresaber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sstrack/sstrack/pkg/provider"
)

const fullPlayer = `{
  "id": "76561199396123565",
  "name": "ColGuy20",
  "profilePicture": "https://cdn.scoresaber.com/avatars/76561199396123565.jpg",
  "bio": null,
  "country": "US",
  "pp": 4512.37,
  "rank": 50,
  "countryRank": 12,
  "role": null,
  "badges": [],
  "histories": "60,55,52,50",
  "scoreStats": {
    "totalScore": 1234567,
    "totalRankedScore": 800000,
    "averageRankedAccuracy": 92.1234,
    "totalPlayCount": 300,
    "rankedPlayCount": 200,
    "replaysWatched": 7
  },
  "permissions": 0,
  "banned": false,
  "inactive": true,
  "firstSeen": "2022-07-29T02:28:24.000Z"
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, RequestsPerMinute: 60_000})
}

func TestFetchSnapshot(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, fullPlayer)
	})

	s, err := c.FetchSnapshot(context.Background(), "76561199396123565")
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if gotPath != "/player/76561199396123565/full" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if s.ID != "76561199396123565" || s.Name != "ColGuy20" || s.Country != "US" {
		t.Fatalf("identity not decoded: %#v", s)
	}
	if s.PP != 4512.37 || s.Rank != 50 || s.CountryRank != 12 {
		t.Fatalf("ranking not decoded: %#v", s)
	}
	if s.ScoreStats.TotalScore != 1234567 || s.ScoreStats.AverageRankedAccuracy != 92.1234 || s.ScoreStats.ReplaysWatched != 7 {
		t.Fatalf("score stats not decoded: %#v", s.ScoreStats)
	}
	if s.Banned || !s.Inactive {
		t.Fatalf("flags not decoded: banned=%v inactive=%v", s.Banned, s.Inactive)
	}
	want := time.Date(2022, 7, 29, 2, 28, 24, 0, time.UTC)
	if !s.FirstSeen.Equal(want) {
		t.Fatalf("first seen: expected %v, got %v", want, s.FirstSeen)
	}
}

func TestFetchSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"errorMessage":"Player not found"}`, provider.ErrNotFound},
		{"bad request", http.StatusBadRequest, `{"errorMessage":"Invalid id"}`, provider.ErrNotFound},
		{"server error", http.StatusInternalServerError, `oops`, provider.ErrTransport},
		{"rate limited", http.StatusTooManyRequests, `{}`, provider.ErrTransport},
		{"malformed", http.StatusOK, `{not json`, provider.ErrTransport},
		{"missing id", http.StatusOK, `{"name":"x"}`, provider.ErrTransport},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := c.FetchSnapshot(context.Background(), "123")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFetchSnapshot_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, RequestsPerMinute: 60_000})
	_, err := c.FetchSnapshot(context.Background(), "123")
	if !errors.Is(err, provider.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestFetchSnapshot_EmptyID(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:0"})
	if _, err := c.FetchSnapshot(context.Background(), "  "); !errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("expected not found for empty id, got %v", err)
	}
}

func TestSearchByName(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search")
		if r.URL.Path != "/players" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"players":[{"id":"2","name":"ColGuy"},{"id":"1","name":"ColGuy20"},{"name":"no id"}]}`)
	})

	got, err := c.SearchByName(context.Background(), "ColGuy")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if gotQuery != "ColGuy" {
		t.Fatalf("unexpected search query %q", gotQuery)
	}
	if len(got) != 2 || got[0].ID != "2" || got[1].Name != "ColGuy20" {
		t.Fatalf("unexpected candidates %#v", got)
	}
}

func TestSearchByName_NoMatches(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errorMessage":"Players not found"}`)
	})

	got, err := c.SearchByName(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %#v", got)
	}
}
