package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ViolationRedisRepository counts rate-limit violations per IP with a
// shared Redis counter. The key's TTL is refreshed on every violation,
// so the count approximates a trailing window rather than a fixed one.
type ViolationRedisRepository struct {
	r         redis.Cmdable
	keyPrefix string
}

func NewViolationRedisRepository(r redis.Cmdable) *ViolationRedisRepository {
	return &ViolationRedisRepository{r: r, keyPrefix: "violations"}
}

// RecordAndCount increments the IP's violation counter and returns the
// new value. The counter expires after the window passes without
// further violations.
func (repo *ViolationRedisRepository) RecordAndCount(ctx context.Context, ip string, principal *uuid.UUID, window time.Duration, now time.Time) (int, error) {
	key := fmt.Sprintf("%s:%s", repo.keyPrefix, ip)
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
