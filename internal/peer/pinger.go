package peer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errChannelFull = errors.New("peer: ping channel full")

// Pinger is a bounded, best-effort wake-up channel between one executor and
// a peer (spec.md §2, §6). Delivery is advisory: spec.md §5 requires that a
// lost ping never compromise correctness, only latency, so Send retries a
// short, bounded number of times and then gives up quietly rather than
// blocking the caller.
type Pinger struct {
	ch chan struct{}
}

// NewPinger returns a pinger with the given channel capacity.
func NewPinger(capacity int) *Pinger {
	if capacity <= 0 {
		capacity = 1
	}
	return &Pinger{ch: make(chan struct{}, capacity)}
}

// pingInitialInterval and pingMaxInterval keep Send's retry window in the
// sub-millisecond range: Send is called synchronously from Scheduler.Keep
// (via wakePeers), and a ping is advisory, so the sender must never stall
// DAG expansion waiting for a peer to drain its channel. backoff's own
// NewExponentialBackOff default (500ms initial) would block a caller for
// seconds across 3 retries; these are scaled down by three orders of
// magnitude for that reason.
const (
	pingInitialInterval = 100 * time.Microsecond
	pingMaxInterval     = 1 * time.Millisecond
)

// Send attempts best-effort delivery of a wake-up event, retrying a few
// times with exponential backoff before giving up. A failure here is never
// fatal to the caller; it is surfaced only so tests and tracing can
// observe it.
func (p *Pinger) Send(ctx context.Context) error {
	operation := func() error {
		select {
		case p.ch <- struct{}{}:
			return nil
		default:
			return errChannelFull
		}
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = pingInitialInterval
	eb.MaxInterval = pingMaxInterval
	b := backoff.WithMaxRetries(eb, 3)
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// C exposes the channel idle peers select on to wake up.
func (p *Pinger) C() <-chan struct{} { return p.ch }
