package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client

	embedded *miniredis.Miniredis
}

func NewRedisCache(url string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", url, err)
	}
	return &RedisCache{Client: client}, nil
}

// NewEmbeddedRedisCache starts an in-process redis for setups without one.
func NewEmbeddedRedisCache() (*RedisCache, error) {
	mr, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start embedded redis: %w", err)
	}
	c, err := NewRedisCache(mr.Addr())
	if err != nil {
		mr.Close()
		return nil, err
	}
	c.embedded = mr
	return c, nil
}

func (r *RedisCache) Embedded() bool {
	return r.embedded != nil
}

func (r *RedisCache) Close() error {
	err := r.Client.Close()
	if r.embedded != nil {
		r.embedded.Close()
	}
	return err
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, expiration).Err()
}

// Get decodes the JSON stored at key into dest, or returns ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return r.Client.Del(ctx, keys...).Err()
}

/*
* movie listing and detail
 */

func (r *RedisCache) ListVersion(ctx context.Context) (int64, error) {
	v, err := r.Client.Get(ctx, MovieListVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

// InvalidateMovie drops the movie's cached detail and retires every cached
// listing page. A zero id only retires the listings.
func (r *RedisCache) InvalidateMovie(ctx context.Context, movieID uint) error {
	keys := []string{MovieListVersionKey}
	if movieID != 0 {
		keys = append(keys, MakeMovieDetailKey(movieID))
	}
	return invalidateMovieScript.Run(ctx, r.Client, keys).Err()
}

// InvalidateMovieDetails drops cached details without touching the listings.
func (r *RedisCache) InvalidateMovieDetails(ctx context.Context, movieIDs ...uint) error {
	if len(movieIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(movieIDs))
	for _, id := range movieIDs {
		keys = append(keys, MakeMovieDetailKey(id))
	}
	return r.Delete(ctx, keys...)
}

/*
* per-key locks
 */

// Lock takes the lock at key, retrying until wait elapses. The returned
// function releases it only if it is still held by this caller.
func (r *RedisCache) Lock(ctx context.Context, key string, ttl, wait time.Duration) (unlock func() error, err error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	backoff := 5 * time.Millisecond
	for {
		ok, err := r.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() error {
				return releaseLockScript.Run(context.Background(), r.Client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 100*time.Millisecond {
			backoff *= 2
		}
	}
}

// LockMovieRating serializes rating writes for one movie.
func (r *RedisCache) LockMovieRating(ctx context.Context, movieID uint) (func() error, error) {
	return r.Lock(ctx, MakeMovieRatingLockKey(movieID), LockTTL, LockWait)
}
