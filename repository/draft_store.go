package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore parks a checkout draft while the buyer is on the hosted
// payment page. The order record is only written after the provider
// confirms the payment on the callback round-trip.
type DraftStore interface {
	Put(ctx context.Context, token string, draft any, ttl time.Duration) error
	// Take retrieves and deletes the draft for token; found is false when
	// the token is unknown or expired.
	Take(ctx context.Context, token string, draft any) (found bool, err error)
}

type RedisDraftStore struct {
	client *redis.Client
}

func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{client: client}
}

func draftKey(token string) string {
	return "checkout:draft:" + token
}

func (s *RedisDraftStore) Put(ctx context.Context, token string, draft any, ttl time.Duration) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(token), data, ttl).Err()
}

func (s *RedisDraftStore) Take(ctx context.Context, token string, draft any) (bool, error) {
	data, err := s.client.GetDel(ctx, draftKey(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), draft); err != nil {
		return false, err
	}
	return true, nil
}
