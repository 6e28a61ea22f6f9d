package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tiffinbox/tiffin/pkg/logger"
)

const (
	redisQueueKey   = "tiffin:queue:jobs"
	redisDelayedKey = "tiffin:queue:delayed"
)

// RedisDriver is a durable queue driver. Immediate jobs use LPUSH/BRPOP on a
// list; delayed jobs wait in a sorted set scored by their due time in
// milliseconds and are promoted once a second.
type RedisDriver struct {
	rdb *redis.Client
}

// NewRedisDriver creates a Redis-backed driver on the client shared with
// pkg/cache. Promotion of delayed jobs runs until ctx is cancelled.
func NewRedisDriver(ctx context.Context, rdb *redis.Client) *RedisDriver {
	d := &RedisDriver{rdb: rdb}
	go d.promoteDelayedJobs(ctx)
	return d
}

func (d *RedisDriver) Push(payload []byte) error {
	if err := d.rdb.LPush(context.Background(), redisQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// Pop blocks up to 5s for a job. A timeout yields (nil, nil).
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	result, err := d.rdb.BRPop(ctx, 5*time.Second, redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (d *RedisDriver) PushDelayed(payload []byte, delay time.Duration) error {
	runAt := float64(time.Now().Add(delay).UnixMilli())
	if err := d.rdb.ZAdd(context.Background(), redisDelayedKey, redis.Z{
		Score:  runAt,
		Member: string(payload),
	}).Err(); err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

func (d *RedisDriver) promoteDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := strconv.FormatInt(time.Now().UnixMilli(), 10)
		jobs, err := d.rdb.ZRangeByScore(ctx, redisDelayedKey, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
		if err != nil || len(jobs) == 0 {
			continue
		}
		for _, job := range jobs {
			// ZREM first so two instances never promote the same job.
			removed, err := d.rdb.ZRem(ctx, redisDelayedKey, job).Result()
			if err != nil || removed == 0 {
				continue
			}
			if err := d.rdb.LPush(ctx, redisQueueKey, job).Err(); err != nil {
				logger.Error("queue/redis: promote delayed job", "error", err)
			}
		}
	}
}
