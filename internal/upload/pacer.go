package upload

import (
	"context"
	"time"
)

// Kind classifies a destination chat.
type Kind int

const (
	// KindPrivate is a one-to-one chat.
	KindPrivate Kind = iota
	// KindGroup covers groups, supergroups and channels.
	KindGroup
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindPrivate {
		return "private"
	}
	return "group"
}

// Pacer enforces a fixed delay between outbound messages. It is the only
// throttling applied to the Bot API.
type Pacer struct {
	PrivateDelay time.Duration
	GroupDelay   time.Duration

	// Sleep waits for d or until ctx is done. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the pause applied after a message to a chat of kind k.
func (p *Pacer) Delay(k Kind) time.Duration {
	if k == KindPrivate {
		return p.PrivateDelay
	}
	return p.GroupDelay
}

// Pause blocks for Delay(k) or until ctx is done.
func (p *Pacer) Pause(ctx context.Context, k Kind) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay(k))
	}
	return sleep(ctx, p.Delay(k))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
