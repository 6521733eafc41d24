// Package command turns chat-style text into tracker and store operations.
package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/tracking"
)

type Kind int

const (
	Stats Kind = iota + 1
	Track
	Untrack
	Link
	Unlink
	ID
	Help
)

var kindNames = map[string]Kind{
	"/stats":   Stats,
	"/track":   Track,
	"/untrack": Untrack,
	"/link":    Link,
	"/unlink":  Unlink,
	"/id":      ID,
	"/help":    Help,
}

func (k Kind) String() string {
	for name, kk := range kindNames {
		if kk == k {
			return name
		}
	}
	return "unknown"
}

// Request is a parsed command. Target is empty when the caller's linked
// player should be used; Interval is zero when the default applies.
type Request struct {
	Kind     Kind
	Target   string
	Interval time.Duration
	Query    string
}

// UsageError carries the reply shown to a user who typed a malformed command.
type UsageError struct {
	Text string
}

func (e *UsageError) Error() string { return e.Text }

func usage(text string) error { return &UsageError{Text: text} }

const (
	statsUsage = "(`/stats` `player_id`)"
	trackUsage = "(`/track` `player_id` `time (seconds)`)"
)

// Parse reads a single command line such as "/track 7656 30".
func Parse(text string) (Request, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Request{}, usage("Invalid Command")
	}
	kind, ok := kindNames[strings.ToLower(fields[0])]
	if !ok {
		return Request{}, usage("Invalid Command")
	}
	args := fields[1:]
	req := Request{Kind: kind}

	switch kind {
	case Stats:
		if len(args) > 1 {
			return Request{}, usage("Incorrect number of fields. " + statsUsage)
		}
		if len(args) == 1 {
			req.Target = player.NormalizeID(args[0])
		}
	case Track:
		if len(args) == 0 || len(args) > 2 {
			return Request{}, usage("Incorrect number of fields. " + trackUsage)
		}
		req.Target = player.NormalizeID(args[0])
		if len(args) == 2 {
			secs, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return Request{}, usage("Please use a number for *time*. Make sure it is positive. " + trackUsage)
			}
			req.Interval = time.Duration(secs) * time.Second
			if req.Interval < tracking.MinInterval {
				return Request{}, usage("Please use a number of 5 seconds or more. " + trackUsage)
			}
		}
	case Link:
		if len(args) != 1 {
			return Request{}, usage("Incorrect number of fields. (`/link` `player_id`)")
		}
		req.Target = player.NormalizeID(args[0])
	case ID:
		if len(args) == 0 {
			return Request{}, usage("Incorrect number of fields. (`/id` `player name`)")
		}
		req.Query = strings.Join(args, " ")
	default:
		if len(args) > 0 {
			return Request{}, usage("Incorrect number of fields. (`" + kind.String() + "`)")
		}
	}
	return req, nil
}
