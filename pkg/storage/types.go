package storage

import (
	"time"

	"github.com/sstrack/sstrack/pkg/player"
)

// PlayerRecord is a stored row: the latest snapshot plus bookkeeping columns.
type PlayerRecord struct {
	Snapshot  player.Snapshot `json:"snapshot"`
	Discord   string          `json:"discord,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Stats summarizes the player table.
type Stats struct {
	Players     int       `json:"players"`
	Linked      int       `json:"linked"`
	LastUpdated time.Time `json:"last_updated"`
}
