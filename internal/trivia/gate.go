package trivia

import (
	"context"
	"sync"
	"time"
)

// Gate serializes outbound API calls and enforces a minimum gap between
// them. All callers queue behind the one mutex; each waits out whatever
// remains of the gap before proceeding.
type Gate struct {
	mu       sync.Mutex
	gap      time.Duration
	lastCall time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewGate returns a gate with the given minimum gap between calls.
func NewGate(gap time.Duration) *Gate {
	return &Gate{
		gap:   gap,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Wait blocks until the caller is allowed to make the next call, then
// records the call time. Returns the context error if cancelled while
// queued.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := g.gap - g.now().Sub(g.lastCall); wait > 0 {
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
	g.lastCall = g.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
