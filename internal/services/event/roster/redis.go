package roster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/LeonardoBeccarini/connevents/internal/model"
)

type RedisOpts struct {
	Addr, Password, Key string
	DB                  int
	Timeout             time.Duration
	MaxElapsed          time.Duration
}

type hashGetter interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// LoadRedis snapshots the hash at opts.Key (field = device id, value = name).
func LoadRedis(ctx context.Context, opts RedisOpts) ([]model.Device, error) {
	if opts.Key == "" {
		opts.Key = "devices:names"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	defer rdb.Close()
	return loadHash(ctx, rdb, opts.Key, opts.MaxElapsed)
}

func loadHash(ctx context.Context, c hashGetter, key string, maxElapsed time.Duration) ([]model.Device, error) {
	bo := backoff.NewExponentialBackOff()
	if maxElapsed > 0 {
		bo.MaxElapsedTime = maxElapsed
	}

	var names map[string]string
	err := backoff.Retry(func() error {
		m, err := c.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		names = m
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("redis roster %s: %w", key, err)
	}
	if len(names) == 0 {
		return nil, ErrEmptyRoster
	}

	out := make([]model.Device, 0, len(names))
	for id, name := range names {
		out = append(out, model.Device{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
