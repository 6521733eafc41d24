// Package tracking runs repeating poll loops, one per invoking context.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/sstrack/sstrack/pkg/metrics"
	"github.com/sstrack/sstrack/pkg/notify"
	"github.com/sstrack/sstrack/pkg/polling"
	"github.com/sstrack/sstrack/pkg/provider"
)

// MinInterval is the shortest accepted delay between two ticks.
const MinInterval = 5 * time.Second

var (
	ErrInvalidArgument = errors.New("tracking: invalid argument")
	ErrClosed          = errors.New("tracking: tracker is shut down")
)

// State of a context's tracking session.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Info is a point-in-time copy of a session.
type Info struct {
	ContextID    string
	TargetID     string
	Interval     time.Duration
	State        State
	SuccessCount int64
	StartedAt    time.Time
	LastTick     time.Time
	LastErr      error
}

// Handle identifies a started session.
type Handle struct {
	ContextID string
	TargetID  string
	Interval  time.Duration
	StartedAt time.Time
}

// Config wires a Tracker to its collaborators.
type Config struct {
	Provider provider.Provider
	Store    polling.Store   // optional
	Notifier notify.Notifier // optional
	Renderer notify.Renderer
	Clock    clock.Clock      // defaults to clock.WallClock
	Metrics  *metrics.Manager // optional
	Log      polling.Logger   // optional
}

type session struct {
	info Info // guarded by Tracker.mu
	stop chan struct{}
}

// Tracker owns the registry of sessions keyed by context id.
type Tracker struct {
	cfg Config
	log polling.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

func New(cfg Config) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		cfg:      cfg,
		log:      polling.OrNop(cfg.Log),
		baseCtx:  ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
}

// Start begins tracking targetID in contextID. A session already running in
// the same context is replaced. Tick 0 runs before Start returns; its fetch
// error, if any, is returned alongside the handle and the session is left
// Idle.
func (t *Tracker) Start(ctx context.Context, contextID, targetID string, interval time.Duration) (Handle, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return Handle{}, fmt.Errorf("%w: empty player id", ErrInvalidArgument)
	}
	if interval < MinInterval {
		return Handle{}, fmt.Errorf("%w: interval %s is below %s", ErrInvalidArgument, interval, MinInterval)
	}

	now := t.cfg.Clock.Now()
	s := &session{
		info: Info{
			ContextID: contextID,
			TargetID:  targetID,
			Interval:  interval,
			State:     Running,
			StartedAt: now,
		},
		stop: make(chan struct{}),
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Handle{}, ErrClosed
	}
	if prev, ok := t.sessions[contextID]; ok {
		if t.endLocked(prev, "replaced", nil) {
			t.log.Infof("Replacing tracking of %s in %s", prev.info.TargetID, contextID)
		}
	}
	t.sessions[contextID] = s
	t.mu.Unlock()
	t.cfg.Metrics.SessionStarted()

	h := Handle{ContextID: contextID, TargetID: targetID, Interval: interval, StartedAt: now}

	t.notify(ctx, contextID, fmt.Sprintf("Began tracking every %d seconds!", int64(interval/time.Second)))
	if err := t.tick(ctx, s); err != nil {
		if errors.Is(err, errStopped) {
			return h, nil
		}
		return h, err
	}

	t.mu.Lock()
	if t.closed || s.info.State != Running {
		t.mu.Unlock()
		return h, nil
	}
	t.wg.Add(1)
	t.mu.Unlock()
	go t.loop(s)
	return h, nil
}

// Stop ends the session in contextID. It reports false when nothing was
// running there.
func (t *Tracker) Stop(contextID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[contextID]
	if !ok {
		return false
	}
	if !t.endLocked(s, "stopped", nil) {
		return false
	}
	t.log.Infof("Tracking of %s in %s has stopped", s.info.TargetID, contextID)
	return true
}

func (t *Tracker) Status(contextID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[contextID]; ok {
		return s.info.State
	}
	return Idle
}

// Session returns a copy of the session last started in contextID.
func (t *Tracker) Session(contextID string) (Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[contextID]
	if !ok {
		return Info{}, false
	}
	return s.info, true
}

// Sessions lists every known session ordered by context id.
func (t *Tracker) Sessions() []Info {
	t.mu.Lock()
	out := make([]Info, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s.info)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ContextID < out[j].ContextID })
	return out
}

// Shutdown stops every session and waits for their loops to exit. If ctx
// expires first, in-flight fetches are cancelled and ctx.Err() is returned.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	for _, s := range t.sessions {
		t.endLocked(s, "shutdown", nil)
	}
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.cancel()
		return nil
	case <-ctx.Done():
		t.cancel()
		<-done
		return ctx.Err()
	}
}

// endLocked moves s to Idle and signals its loop. It reports whether s was
// running. t.mu must be held.
func (t *Tracker) endLocked(s *session, reason string, err error) bool {
	if s.info.State != Running {
		return false
	}
	s.info.State = Idle
	if err != nil {
		s.info.LastErr = err
	}
	close(s.stop)
	t.cfg.Metrics.SessionEnded(reason)
	return true
}

func (t *Tracker) running(s *session) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return s.info.State == Running
}

func (t *Tracker) loop(s *session) {
	defer t.wg.Done()
	for {
		timer := t.cfg.Clock.NewTimer(s.info.Interval)
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.Chan():
		}
		if err := t.tick(t.baseCtx, s); err != nil {
			return
		}
	}
}

// tick polls once for s. A non-nil return means the session is over, either
// because it was stopped or because the fetch failed.
func (t *Tracker) tick(ctx context.Context, s *session) error {
	if !t.running(s) {
		return errStopped
	}

	start := t.cfg.Clock.Now()
	res, err := polling.PollPlayer(ctx, polling.Config{
		Provider:  t.cfg.Provider,
		Store:     t.cfg.Store,
		Notifier:  t.cfg.Notifier,
		Renderer:  t.cfg.Renderer,
		ContextID: s.info.ContextID,
		PlayerID:  s.info.TargetID,
		Log:       t.log,
	})
	elapsed := t.cfg.Clock.Now().Sub(start)

	if res != nil {
		if res.StoreErr != nil {
			t.cfg.Metrics.StoreError()
		}
		if res.DeliveryErr != nil {
			t.cfg.Metrics.DeliveryError()
		}
	}

	if err != nil {
		t.cfg.Metrics.ObserveTick(outcome(err), elapsed)
		t.mu.Lock()
		ended := t.endLocked(s, "failed", err)
		if ended {
			s.info.LastTick = t.cfg.Clock.Now()
		}
		t.mu.Unlock()
		if !ended {
			// stopped while the fetch was in flight
			return errStopped
		}
		t.log.Warnf("Tracking of %s in %s terminated: %v", s.info.TargetID, s.info.ContextID, err)
		t.notify(ctx, s.info.ContextID, failureText(err))
		return err
	}

	t.cfg.Metrics.ObserveTick(metrics.OutcomeOK, elapsed)
	t.mu.Lock()
	s.info.LastTick = t.cfg.Clock.Now()
	s.info.SuccessCount++
	s.info.LastErr = errors.Join(res.StoreErr, res.DeliveryErr)
	count := s.info.SuccessCount
	t.mu.Unlock()
	t.log.Infof("Stats sent for %s [Success Count: %d] (every %s)", s.info.TargetID, count, s.info.Interval)
	return nil
}

var errStopped = errors.New("tracking: session stopped")

func (t *Tracker) notify(ctx context.Context, contextID, text string) {
	if t.cfg.Notifier == nil {
		return
	}
	if err := t.cfg.Notifier.Deliver(ctx, contextID, notify.Simple(text)); err != nil {
		t.cfg.Metrics.DeliveryError()
		t.log.Warnf("Failed to notify %s: %v", contextID, err)
	}
}

func outcome(err error) string {
	if errors.Is(err, provider.ErrNotFound) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeTransport
}

func failureText(err error) string {
	if errors.Is(err, provider.ErrNotFound) {
		return "**FAILED:** Invalid player ID provided."
	}
	return "**FAILED:** Could not reach ScoreSaber. Tracking has stopped."
}
