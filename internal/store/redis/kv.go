package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/gosuda/backoffice/internal/domain"
)

// maxUpdateAttempts bounds optimistic retries when a watched key changes.
const maxUpdateAttempts = 16

var errUpdateContention = errors.New("redis: update retries exhausted") //nolint:gochecknoglobals // sentinel error

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis.Client.Get: %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Client.Get: %w", err)
	}
	return v, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis.Client.Set: %w", err)
	}
	return nil
}

// Keys lists the stored keys starting with prefix, sorted. Glob
// metacharacters in prefix are matched literally.
func (c *Client) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := c.client.Scan(ctx, 0, globEscaper.Replace(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis.Client.Keys: %w", err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`) //nolint:gochecknoglobals // immutable

// Update applies fn under WATCH/MULTI, retrying when another client writes
// the key between the read and the commit. fn may run more than once.
func (c *Client) Update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	watch := func() (struct{}, error) {
		err := c.client.Watch(ctx, txf, key)
		if err == nil || errors.Is(err, redis.TxFailedErr) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, watch,
		backoff.WithBackOff(updateBackOff()),
		backoff.WithMaxTries(maxUpdateAttempts),
	)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("redis.Client.Update: %q: %w", key, errUpdateContention)
	}
	if err != nil {
		return fmt.Errorf("redis.Client.Update: %w", err)
	}
	return nil
}

// updateBackOff spreads out writers that keep losing the same key.
func updateBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	return b
}
