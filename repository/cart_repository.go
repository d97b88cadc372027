package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cmticaret/models"

	"github.com/redis/go-redis/v9"
)

// CartRepository stores per-user carts. Anonymous carts live in the
// browser; only authenticated carts reach this store.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID string) error
}

// IdempotencyStore maps checkout idempotency keys to created order IDs.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, orderID string, ttl time.Duration) error
}

// RedisCartRepository keeps carts as JSON blobs with a TTL, and doubles
// as the idempotency store (both are small, expiring key/value records).
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (r *RedisCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cartKey(cart.UserID), data, r.ttl).Err()
}

func (r *RedisCartRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, cartKey(userID)).Err()
}

// Idempotency helpers

func idemKey(key string) string {
	return "idem:checkout:" + key
}

func (r *RedisCartRepository) GetIdempotency(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, idemKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisCartRepository) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, idemKey(key), orderID, ttl).Err()
}

// RedisIdempotencyStore adapts RedisCartRepository to IdempotencyStore.
type RedisIdempotencyStore struct {
	repo *RedisCartRepository
}

func NewRedisIdempotencyStore(repo *RedisCartRepository) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{repo: repo}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return s.repo.GetIdempotency(ctx, key)
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return s.repo.SetIdempotency(ctx, key, orderID, ttl)
}
