// internal/store/redis.go
//
// Redis implementation of the session Store.
//
// Characteristics:
//   - Each owner's record is a msgpack value under "recall:session:<owner>".
//   - SET replaces atomically; an optional TTL expires abandoned quizzes.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/robalobadob/noterecall/internal/game"
)

// redisStore keeps each owner's record as a msgpack blob under prefix+owner.
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a Store on client. Records expire after ttl
// (0 keeps them until replaced).
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, prefix: "recall:session:", ttl: ttl}
}

func (r *redisStore) Save(ctx context.Context, owner string, rec *game.SessionRecord) error {
	b, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, r.prefix+owner, b, r.ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, owner string) (*game.SessionRecord, error) {
	b, err := r.client.Get(ctx, r.prefix+owner).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var rec game.SessionRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &rec, nil
}

func (r *redisStore) Delete(ctx context.Context, owner string) error {
	return r.client.Del(ctx, r.prefix+owner).Err()
}
