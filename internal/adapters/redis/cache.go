package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/showtix/showtix/internal/domain"
)

const activeShowsKey = "cache:shows:active"

// Cache keeps the public show listing in Redis so browse traffic does not
// hit Postgres on every request. Admin writes invalidate it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// GetActiveShows returns (nil, nil) on a cache miss.
func (c *Cache) GetActiveShows(ctx context.Context) ([]domain.Show, error) {
	data, err := c.client.Get(ctx, activeShowsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var shows []domain.Show
	if err := json.Unmarshal(data, &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

func (c *Cache) SetActiveShows(ctx context.Context, shows []domain.Show) error {
	data, err := json.Marshal(shows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activeShowsKey, data, c.ttl).Err()
}

func (c *Cache) InvalidateShows(ctx context.Context) error {
	return c.client.Del(ctx, activeShowsKey).Err()
}
