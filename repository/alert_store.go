package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// AlertStore remembers which products were covered by the previous
// inventory alert for a condition, so repeated sweeps only alert on
// state transitions.
type AlertStore interface {
	// Alerted returns the product IDs the last alert for condition covered.
	Alerted(ctx context.Context, condition string) (map[string]bool, error)
	// Replace overwrites the remembered set with the current membership.
	Replace(ctx context.Context, condition string, productIDs []string) error
}

type RedisAlertStore struct {
	client *redis.Client
}

func NewRedisAlertStore(client *redis.Client) *RedisAlertStore {
	return &RedisAlertStore{client: client}
}

func alertKey(condition string) string {
	return "alerted:" + condition
}

func (s *RedisAlertStore) Alerted(ctx context.Context, condition string) (map[string]bool, error) {
	ids, err := s.client.SMembers(ctx, alertKey(condition)).Result()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *RedisAlertStore) Replace(ctx context.Context, condition string, productIDs []string) error {
	key := alertKey(condition)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(productIDs) > 0 {
		members := make([]interface{}, len(productIDs))
		for i, id := range productIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
