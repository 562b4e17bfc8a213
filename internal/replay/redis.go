package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

const keyPrefix = "replay:"

// RedisGuard implements Guard on a shared Redis instance. Validators run
// across service instances, so replay state has to live outside the
// process; SET NX with a TTL gives the register-and-check in one atomic
// round trip.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) Seen(ctx context.Context, ref domain.TicketReference, window time.Duration) (bool, error) {
	set, err := g.client.SetNX(ctx, keyPrefix+Key(ref), 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("replay setnx: %w", err)
	}
	return !set, nil
}
