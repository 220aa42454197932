package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/metrics"
)

// RedisSlotCache caches computed availability per doctor and date. Every
// error is treated as a miss so the database stays the source of truth.
type RedisSlotCache struct {
	client  *redis.Client
	ttl     time.Duration
	log     *logger.Logger
	metrics *metrics.Collector
}

func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration, log *logger.Logger, m *metrics.Collector) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl, log: log, metrics: m}
}

// genTTL outlives any read; an expired generation resets to 0 and only
// causes one skipped write.
const genTTL = 24 * time.Hour

var errStale = errors.New("slot cache generation moved")

func slotKey(doctorID uint, date calendar.Date) string {
	return fmt.Sprintf("slots:%d:%s", doctorID, date)
}

func genKey(doctorID uint, date calendar.Date) string {
	return slotKey(doctorID, date) + ":gen"
}

func (c *RedisSlotCache) Get(ctx context.Context, doctorID uint, date calendar.Date) (*domain.Availability, uint64, bool) {
	vals, err := c.client.MGet(ctx, genKey(doctorID, date), slotKey(doctorID, date)).Result()
	if err != nil {
		c.log.WithComponent("slot_cache").WithError(err).Warn("cache read failed")
		c.metrics.RecordSlotCache("miss")
		// an unknown generation never matches, so Set is skipped
		return nil, ^uint64(0), false
	}

	gen, err := parseGen(vals[0])
	if err != nil {
		c.metrics.RecordSlotCache("miss")
		return nil, ^uint64(0), false
	}

	raw, ok := vals[1].(string)
	if !ok {
		c.metrics.RecordSlotCache("miss")
		return nil, gen, false
	}

	var av domain.Availability
	if err := json.Unmarshal([]byte(raw), &av); err != nil {
		c.metrics.RecordSlotCache("miss")
		return nil, gen, false
	}

	c.metrics.RecordSlotCache("hit")
	return &av, gen, true
}

func parseGen(v any) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation %T", v)
	}
	return strconv.ParseUint(s, 10, 64)
}

// Set writes under WATCH on the generation key; a concurrent Invalidate
// aborts the write.
func (c *RedisSlotCache) Set(ctx context.Context, doctorID uint, date calendar.Date, gen uint64, av *domain.Availability) {
	raw, err := json.Marshal(av)
	if err != nil {
		return
	}

	gk := genKey(doctorID, date)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, slotKey(doctorID, date), raw, c.ttl)
			return nil
		})
		return err
	}, gk)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		c.metrics.RecordSlotCache("stale")
	default:
		c.log.WithComponent("slot_cache").WithError(err).Warn("cache write failed")
	}
}

// Invalidate bumps the generation and drops the cached value.
func (c *RedisSlotCache) Invalidate(ctx context.Context, doctorID uint, date calendar.Date) {
	gk := genKey(doctorID, date)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gk)
		pipe.Expire(ctx, gk, genTTL)
		pipe.Del(ctx, slotKey(doctorID, date))
		return nil
	})
	if err != nil {
		c.log.WithComponent("slot_cache").WithError(err).Warn("cache invalidate failed")
	}
}

// NoopSlotCache is used when REDIS_URL is empty.
type NoopSlotCache struct{}

func (NoopSlotCache) Get(context.Context, uint, calendar.Date) (*domain.Availability, uint64, bool) {
	return nil, 0, false
}
func (NoopSlotCache) Set(context.Context, uint, calendar.Date, uint64, *domain.Availability) {}
func (NoopSlotCache) Invalidate(context.Context, uint, calendar.Date)                        {}

var (
	_ domain.SlotCache = (*RedisSlotCache)(nil)
	_ domain.SlotCache = NoopSlotCache{}
)
