package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/polling"
	"github.com/sstrack/sstrack/pkg/provider"
	"github.com/sstrack/sstrack/pkg/storage"
	"github.com/sstrack/sstrack/pkg/tracking"
)

// DefaultInterval is used by /track when no time is given.
const DefaultInterval = 6 * time.Second

// maxSearchResults caps the /id reply.
const maxSearchResults = 10

const helpText = "`/stats` `player_id` : show a player's stats (uses your linked id when omitted)\n" +
	"`/track` `player_id` `time (seconds)` : post stats on a timer in this channel\n" +
	"`/untrack` : stop tracking in this channel\n" +
	"`/link` `player_id` : link your account to a player\n" +
	"`/unlink` : remove your link\n" +
	"`/id` `player name` : look up player ids by name\n" +
	"`/help` : show this message"

// Store is the persistence the dispatcher needs, satisfied by *storage.DB.
type Store interface {
	polling.Store
	LinkDiscord(ctx context.Context, discordID, playerID string) error
	UnlinkDiscord(ctx context.Context, discordID string) (bool, error)
	LinkedPlayer(ctx context.Context, discordID string) (string, error)
}

// Caller identifies where a command came from and who sent it.
type Caller struct {
	ContextID string
	UserID    string
}

type Dispatcher struct {
	Tracker         *tracking.Tracker
	Provider        provider.Provider
	Store           Store
	Notifier        notify.Notifier
	Renderer        notify.Renderer
	DefaultInterval time.Duration
	Log             polling.Logger
}

func (d *Dispatcher) log() polling.Logger {
	return polling.OrNop(d.Log)
}

// HandleText parses text and handles it. A malformed command is answered
// with its usage text and returned as a *UsageError.
func (d *Dispatcher) HandleText(ctx context.Context, c Caller, text string) error {
	req, err := Parse(text)
	if err != nil {
		d.reply(ctx, c, err.Error())
		return err
	}
	return d.Handle(ctx, c, req)
}

// Handle executes req on behalf of c. Every outcome is answered through the
// notifier in c.ContextID.
func (d *Dispatcher) Handle(ctx context.Context, c Caller, req Request) error {
	switch req.Kind {
	case Stats:
		return d.stats(ctx, c, req)
	case Track:
		return d.track(ctx, c, req)
	case Untrack:
		if d.Tracker.Stop(c.ContextID) {
			d.reply(ctx, c, "Tracking has stopped!")
		} else {
			d.reply(ctx, c, "Not currently tracking!")
		}
		return nil
	case Link:
		return d.link(ctx, c, req)
	case Unlink:
		return d.unlink(ctx, c)
	case ID:
		return d.search(ctx, c, req)
	case Help:
		d.reply(ctx, c, helpText)
		return nil
	}
	d.reply(ctx, c, "Invalid Command")
	return usage("Invalid Command")
}

func (d *Dispatcher) reply(ctx context.Context, c Caller, text string) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Deliver(ctx, c.ContextID, notify.Simple(text)); err != nil {
		d.log().Warnf("Failed to reply in %s: %v", c.ContextID, err)
	}
}

// target resolves the explicit id or falls back to the caller's linked one.
func (d *Dispatcher) target(ctx context.Context, c Caller, req Request) string {
	if req.Target != "" || c.UserID == "" || d.Store == nil {
		return req.Target
	}
	id, err := d.Store.LinkedPlayer(ctx, c.UserID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			d.log().Warnf("Could not look up link for %s: %v", c.UserID, err)
		}
		return ""
	}
	return id
}

func (d *Dispatcher) stats(ctx context.Context, c Caller, req Request) error {
	id := d.target(ctx, c, req)
	if id == "" {
		err := usage("There is no player ID provided. " + statsUsage)
		d.reply(ctx, c, err.Error())
		return err
	}

	_, err := polling.PollPlayer(ctx, polling.Config{
		Provider:  d.Provider,
		Store:     d.Store,
		Notifier:  d.Notifier,
		Renderer:  d.Renderer,
		ContextID: c.ContextID,
		PlayerID:  id,
		Log:       d.Log,
	})
	switch {
	case err == nil:
		d.log().Infof("Stats sent for %s to %s (/stats)", id, c.ContextID)
	case errors.Is(err, provider.ErrNotFound):
		d.reply(ctx, c, "Invalid player ID provided.")
	default:
		d.reply(ctx, c, "Could not reach ScoreSaber, please try again later.")
	}
	return err
}

func (d *Dispatcher) track(ctx context.Context, c Caller, req Request) error {
	id := d.target(ctx, c, req)
	if id == "" {
		err := usage("There is no player ID provided. " + trackUsage)
		d.reply(ctx, c, err.Error())
		return err
	}
	interval := req.Interval
	if interval == 0 {
		interval = d.DefaultInterval
	}
	if interval == 0 {
		interval = DefaultInterval
	}

	_, err := d.Tracker.Start(ctx, c.ContextID, id, interval)
	if errors.Is(err, tracking.ErrInvalidArgument) {
		d.reply(ctx, c, "Please use a number of 5 seconds or more. "+trackUsage)
	}
	// Fetch failures were already reported by the tracker.
	return err
}

func (d *Dispatcher) link(ctx context.Context, c Caller, req Request) error {
	if c.UserID == "" {
		err := usage("Linking needs a user id.")
		d.reply(ctx, c, err.Error())
		return err
	}

	err := d.Store.LinkDiscord(ctx, c.UserID, req.Target)
	if errors.Is(err, storage.ErrNotFound) {
		// Unknown locally: fetch it once so the row exists, then link.
		var s player.Snapshot
		s, err = d.Provider.FetchSnapshot(ctx, req.Target)
		if err != nil {
			if errors.Is(err, provider.ErrNotFound) {
				d.reply(ctx, c, "Invalid player ID provided.")
			} else {
				d.reply(ctx, c, "Could not reach ScoreSaber, please try again later.")
			}
			return err
		}
		if err = d.Store.UpsertPlayer(ctx, s); err == nil {
			err = d.Store.LinkDiscord(ctx, c.UserID, s.ID)
		}
	}
	if err != nil {
		d.log().Errorf("Linking %s to %s failed: %v", c.UserID, req.Target, err)
		d.reply(ctx, c, "Could not link your account, please try again later.")
		return err
	}
	d.reply(ctx, c, fmt.Sprintf("Linked to player `%s`!", req.Target))
	return nil
}

func (d *Dispatcher) unlink(ctx context.Context, c Caller) error {
	if c.UserID == "" {
		err := usage("Unlinking needs a user id.")
		d.reply(ctx, c, err.Error())
		return err
	}
	ok, err := d.Store.UnlinkDiscord(ctx, c.UserID)
	if err != nil {
		d.log().Errorf("Unlinking %s failed: %v", c.UserID, err)
		d.reply(ctx, c, "Could not unlink your account, please try again later.")
		return err
	}
	if ok {
		d.reply(ctx, c, "Your account has been unlinked!")
	} else {
		d.reply(ctx, c, "No account is linked!")
	}
	return nil
}

func (d *Dispatcher) search(ctx context.Context, c Caller, req Request) error {
	found, err := d.Provider.SearchByName(ctx, req.Query)
	if err != nil {
		d.log().Warnf("Searching for %q failed: %v", req.Query, err)
		d.reply(ctx, c, "Could not reach ScoreSaber, please try again later.")
		return err
	}
	if len(found) == 0 {
		d.reply(ctx, c, fmt.Sprintf("No players found matching `%s`.", req.Query))
		return nil
	}

	var b strings.Builder
	for i, cand := range found {
		if i == maxSearchResults {
			fmt.Fprintf(&b, "...and %d more", len(found)-maxSearchResults)
			break
		}
		fmt.Fprintf(&b, "%s: `%s`\n", cand.Name, cand.ID)
	}
	d.reply(ctx, c, strings.TrimSuffix(b.String(), "\n"))
	return nil
}
