package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	homedir "github.com/mitchellh/go-homedir"
)

// ErrDaemonRunning is returned when another process already serves the
// same database.
var ErrDaemonRunning = errors.New("another sstrack daemon is using this database")

// DaemonLock marks a database as owned by one `sstrack serve` process, so
// two daemons never run tracking sessions into the same player table.
type DaemonLock struct {
	fl *flock.Flock
}

// AcquireDaemonLock takes the lock file next to dbPath without waiting.
func AcquireDaemonLock(dbPath string) (*DaemonLock, error) {
	abs, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolving db path: %w", err)
	}
	l := &DaemonLock{fl: flock.New(abs + ".lock")}

	ok, err := l.fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDaemonRunning, abs)
	}
	return l, nil
}

// Release gives the database up. Calling it twice is harmless.
func (l *DaemonLock) Release() error {
	if err := l.fl.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlocking %s: %w", l.fl.Path(), err)
	}
	return nil
}

// GetAbsDBPath resolves the database path, defaulting to
// ~/.config/sstrack/sstrack.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "sstrack", "sstrack.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
