package provider

import (
	"context"
	"errors"

	"github.com/sstrack/sstrack/pkg/player"
)

var (
	// ErrNotFound means the provider does not know the requested player.
	ErrNotFound = errors.New("player not found")
	// ErrTransport covers unreachable providers, non-2xx answers and
	// undecodable bodies.
	ErrTransport = errors.New("provider transport error")
)

// Provider defines the remote source of player statistics. Timeouts are the
// implementation's business.
type Provider interface {
	Name() string
	FetchSnapshot(ctx context.Context, playerID string) (player.Snapshot, error)
	// SearchByName returns candidates in the provider's own order.
	SearchByName(ctx context.Context, substring string) ([]player.Candidate, error)
}
