package replay

import (
	"context"
	"sync"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/clock"
	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// MemoryGuard implements Guard in process memory. Suitable for tests and
// single-instance deployments only: replay state does not survive the
// process or span instances.
type MemoryGuard struct {
	clock clock.Clock

	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryGuard(clk clock.Clock) *MemoryGuard {
	return &MemoryGuard{
		clock: clk,
		seen:  make(map[string]time.Time),
	}
}

func (g *MemoryGuard) Seen(_ context.Context, ref domain.TicketReference, window time.Duration) (bool, error) {
	now := g.clock.Now()
	key := Key(ref)

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, expires := range g.seen {
		if !expires.After(now) {
			delete(g.seen, k)
		}
	}

	if expires, ok := g.seen[key]; ok && expires.After(now) {
		return true, nil
	}
	g.seen[key] = now.Add(window)
	return false, nil
}
