package scoresaber

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/provider"
	"github.com/sstrack/sstrack/pkg/whttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://scoresaber.com/api"

	// ScoreSaber allows 400 requests per minute per IP; stay well below it.
	DefaultRequestsPerMinute = 300
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	RequestsPerMinute int
	HTTPClient        *retryablehttp.Client
}

// Client talks to the public ScoreSaber API.
type Client struct {
	baseURL string
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

var _ provider.Provider = (*Client)(nil)

func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return &Client{
		baseURL: base,
		client:  opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

func (c *Client) Name() string { return "scoresaber" }

func (c *Client) get(ctx context.Context, rawURL string) (*whttp.WHTTPRes, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrTransport, err)
	}
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{Method: http.MethodGet, URL: rawURL}, c.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrTransport, err)
	}
	return res, nil
}

func statusError(res *whttp.WHTTPRes) error {
	if res.HTTPTitle != "" {
		return fmt.Errorf("%w: status %d (%s)", provider.ErrTransport, res.StatusCode, res.HTTPTitle)
	}
	return fmt.Errorf("%w: status %d", provider.ErrTransport, res.StatusCode)
}

// FetchSnapshot retrieves the full player document.
func (c *Client) FetchSnapshot(ctx context.Context, playerID string) (player.Snapshot, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Snapshot{}, provider.ErrNotFound
	}

	res, err := c.get(ctx, c.baseURL+"/player/"+url.PathEscape(playerID)+"/full")
	if err != nil {
		return player.Snapshot{}, err
	}

	switch {
	case res.StatusCode == http.StatusNotFound, res.StatusCode == http.StatusBadRequest:
		return player.Snapshot{}, fmt.Errorf("%w: %s", provider.ErrNotFound, playerID)
	case !res.OK():
		return player.Snapshot{}, statusError(res)
	}

	if !gjson.Valid(res.BodyString) {
		return player.Snapshot{}, fmt.Errorf("%w: malformed player document", provider.ErrTransport)
	}
	doc := gjson.Parse(res.BodyString)
	if !doc.Get("id").Exists() {
		return player.Snapshot{}, fmt.Errorf("%w: player document without id", provider.ErrTransport)
	}
	return parseSnapshot(doc), nil
}

func parseSnapshot(doc gjson.Result) player.Snapshot {
	stats := doc.Get("scoreStats")
	s := player.Snapshot{
		ID:             doc.Get("id").String(),
		Name:           doc.Get("name").String(),
		ProfilePicture: doc.Get("profilePicture").String(),
		Country:        doc.Get("country").String(),
		PP:             doc.Get("pp").Float(),
		Rank:           doc.Get("rank").Int(),
		CountryRank:    doc.Get("countryRank").Int(),
		Histories:      doc.Get("histories").String(),
		Banned:         doc.Get("banned").Bool(),
		Inactive:       doc.Get("inactive").Bool(),
		ScoreStats: player.ScoreStats{
			TotalScore:            stats.Get("totalScore").Int(),
			TotalRankedScore:      stats.Get("totalRankedScore").Int(),
			AverageRankedAccuracy: stats.Get("averageRankedAccuracy").Float(),
			TotalPlayCount:        stats.Get("totalPlayCount").Int(),
			RankedPlayCount:       stats.Get("rankedPlayCount").Int(),
			ReplaysWatched:        stats.Get("replaysWatched").Int(),
		},
	}
	if fs := doc.Get("firstSeen").String(); fs != "" {
		if t, err := time.Parse(time.RFC3339Nano, fs); err == nil {
			s.FirstSeen = t.UTC()
		}
	}
	return s
}

// SearchByName looks players up by a name substring.
func (c *Client) SearchByName(ctx context.Context, substring string) ([]player.Candidate, error) {
	substring = strings.TrimSpace(substring)
	if substring == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("search", substring)
	q.Set("withMetadata", "false")
	res, err := c.get(ctx, c.baseURL+"/players?"+q.Encode())
	if err != nil {
		return nil, err
	}

	// ScoreSaber answers 404 when nothing matches.
	if res.StatusCode == http.StatusNotFound {
		return []player.Candidate{}, nil
	}
	if !res.OK() {
		return nil, statusError(res)
	}
	if !gjson.Valid(res.BodyString) {
		return nil, fmt.Errorf("%w: malformed search response", provider.ErrTransport)
	}

	list := gjson.Get(res.BodyString, "players")
	if !list.Exists() {
		list = gjson.Parse(res.BodyString)
	}

	out := []player.Candidate{}
	for _, p := range list.Array() {
		id := p.Get("id").String()
		if id == "" {
			continue
		}
		out = append(out, player.Candidate{ID: id, Name: p.Get("name").String()})
	}
	return out, nil
}
