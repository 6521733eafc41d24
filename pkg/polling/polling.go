package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/provider"
	"github.com/sstrack/sstrack/pkg/storage"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// OrNop returns l, or a logger that discards everything when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}

// Store is the slice of *storage.DB a poll needs.
type Store interface {
	GetPlayer(ctx context.Context, id string) (player.Snapshot, error)
	UpsertPlayer(ctx context.Context, s player.Snapshot) error
}

// Config holds everything PollPlayer needs for a single tick.
type Config struct {
	Provider  provider.Provider // required
	Store     Store             // optional; nil = every player is new and nothing is persisted
	Notifier  notify.Notifier   // optional; nil = render only
	Renderer  notify.Renderer
	ContextID string
	PlayerID  string
	Log       Logger // optional; nil = no logging
}

// Result holds the outcome of one tick. StoreErr and DeliveryErr are
// non-fatal and only recorded.
type Result struct {
	Snapshot    player.Snapshot
	Delta       player.Delta
	IsNew       bool
	Message     notify.Message
	StoreErr    error
	DeliveryErr error
}

// PollPlayer runs one read-fetch-persist-diff-notify cycle. Only a fetch
// failure is returned as an error; it wraps provider.ErrNotFound or
// provider.ErrTransport.
func PollPlayer(ctx context.Context, cfg Config) (*Result, error) {
	log := OrNop(cfg.Log)
	if cfg.Provider == nil {
		return nil, fmt.Errorf("polling: no provider configured")
	}

	result := &Result{IsNew: true}

	var prev player.Snapshot
	if cfg.Store != nil {
		p, err := cfg.Store.GetPlayer(ctx, cfg.PlayerID)
		switch {
		case err == nil:
			prev = p
			result.IsNew = false
		case errors.Is(err, storage.ErrNotFound):
			log.Debugf("No stored snapshot for %s", cfg.PlayerID)
		default:
			log.Warnf("Could not read stored snapshot for %s, treating as new: %v", cfg.PlayerID, err)
			result.StoreErr = err
		}
	}

	cur, err := cfg.Provider.FetchSnapshot(ctx, cfg.PlayerID)
	if err != nil {
		log.Errorf("Fetching %s from %s failed: %v", cfg.PlayerID, cfg.Provider.Name(), err)
		return result, err
	}
	result.Snapshot = cur

	if cfg.Store != nil {
		if err := cfg.Store.UpsertPlayer(ctx, cur); err != nil {
			log.Errorf("Could not persist snapshot for %s: %v", cur.ID, err)
			result.StoreErr = errors.Join(result.StoreErr, err)
		}
	}

	if result.IsNew {
		log.Infof("New player %q created <ID:%s>", cur.Name, cur.ID)
	} else {
		result.Delta = player.ComputeDelta(prev, cur)
		log.Debugf("Player %s changed fields: %v", cur.ID, result.Delta.ChangedFields())
	}

	result.Message = cfg.Renderer.Render(cur, result.Delta, result.IsNew)
	if cfg.Notifier != nil {
		if err := cfg.Notifier.Deliver(ctx, cfg.ContextID, result.Message); err != nil {
			log.Warnf("Failed to deliver stats for %s to %s: %v", cur.ID, cfg.ContextID, err)
			result.DeliveryErr = err
		}
	}

	return result, nil
}

// PlayerOutcome pairs a PollPlayers input with its result.
type PlayerOutcome struct {
	PlayerID string
	Result   *Result
	Err      error
}

// PollPlayers runs PollPlayer for every id using a worker pool. cfg.PlayerID
// is ignored. Outcomes are returned in input order.
func PollPlayers(ctx context.Context, cfg Config, ids []string, concurrency int) []PlayerOutcome {
	if concurrency <= 0 {
		concurrency = 5
	}
	out := make([]PlayerOutcome, len(ids))
	if len(ids) == 0 {
		return out
	}

	idxChan := make(chan int, len(ids))
	for i := range ids {
		idxChan <- i
	}
	close(idxChan)

	var wg sync.WaitGroup
	for w := 0; w < concurrency && w < len(ids); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxChan {
				if ctx.Err() != nil {
					out[i] = PlayerOutcome{PlayerID: ids[i], Err: ctx.Err()}
					continue
				}
				c := cfg
				c.PlayerID = ids[i]
				res, err := PollPlayer(ctx, c)
				out[i] = PlayerOutcome{PlayerID: ids[i], Result: res, Err: err}
			}
		}()
	}
	wg.Wait()
	return out
}
