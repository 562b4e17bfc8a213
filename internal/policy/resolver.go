package policy

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/clock"
	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// Source loads the current validation settings document.
type Source interface {
	LoadPolicy(ctx context.Context) (domain.ValidationPolicy, error)
}

const defaultTTL = 5 * time.Minute

// Resolver caches a single policy snapshot with a TTL. A stale snapshot
// is refreshed on access; when the refresh fails the last good snapshot
// keeps serving, and before any load has succeeded the conservative
// default applies. Validation never fails because settings are
// momentarily unreachable.
type Resolver struct {
	source Source
	clock  clock.Clock
	logger *log.Logger
	ttl    time.Duration

	mu          sync.RWMutex
	snapshot    domain.ValidationPolicy
	loaded      bool
	refreshedAt time.Time
}

func NewResolver(source Source, clk clock.Clock, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source: source,
		clock:  clk,
		logger: log.Default(),
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type ResolverOption func(*Resolver)

// WithTTL overrides the default snapshot TTL.
func WithTTL(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.ttl = d
		}
	}
}

func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Current returns the policy snapshot to apply to a request.
func (r *Resolver) Current(ctx context.Context) domain.ValidationPolicy {
	now := r.clock.Now()

	r.mu.RLock()
	snapshot, loaded, refreshedAt := r.snapshot, r.loaded, r.refreshedAt
	r.mu.RUnlock()

	if loaded && now.Sub(refreshedAt) < r.ttl {
		return snapshot
	}

	fresh, err := r.source.LoadPolicy(ctx)
	if err != nil {
		r.logger.Printf("WARN: policy refresh failed, serving previous snapshot: %v", err)
		if loaded {
			// Push the next attempt out a full TTL so a down settings
			// store is not hammered on every scan.
			r.mu.Lock()
			r.refreshedAt = now
			r.mu.Unlock()
			return snapshot
		}
		return domain.DefaultPolicy()
	}

	r.mu.Lock()
	r.snapshot = fresh
	r.loaded = true
	r.refreshedAt = now
	r.mu.Unlock()
	return fresh
}
