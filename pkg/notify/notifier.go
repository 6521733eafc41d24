package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrDelivery marks a message the sink could not deliver.
var ErrDelivery = errors.New("notify: delivery failed")

// Notifier delivers a rendered message to the destination bound to contextID.
type Notifier interface {
	Deliver(ctx context.Context, contextID string, msg Message) error
}

// Console writes the text rendition of every message to W.
type Console struct {
	W io.Writer

	mu sync.Mutex
}

func (c *Console) Deliver(_ context.Context, contextID string, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.W, "[%s]\n%s\n", contextID, msg.Text()); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// Multi fans a message out to every sink and joins their errors.
type Multi []Notifier

func (m Multi) Deliver(ctx context.Context, contextID string, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Deliver(ctx, contextID, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
