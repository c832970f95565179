package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPending = "pending"

// StoredResponse is the replayable part of a completed request.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers responses by Idempotency-Key, modelled on the
// nonce reservation used for request signing: SETNX claims the key, the
// final response replaces the marker.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}

// Begin claims key. When the key was already used it returns the stored
// response, or nil with started=false while the first request is in flight.
func (s *IdempotencyStore) Begin(ctx context.Context, scope, key string) (*StoredResponse, bool, error) {
	k := idempotencyKey(scope, key)
	ok, err := s.client.SetNX(ctx, k, idempotencyPending, s.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; treat as in flight so the client retries.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(raw) == idempotencyPending {
		return nil, false, nil
	}

	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, err
	}
	return &resp, false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, scope, key string, resp StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKey(scope, key), raw, s.ttl).Err()
}

// Abort releases the key so the request can be retried.
func (s *IdempotencyStore) Abort(ctx context.Context, scope, key string) error {
	return s.client.Del(ctx, idempotencyKey(scope, key)).Err()
}
