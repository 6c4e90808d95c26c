package services

import (
	"context"
	"time"
)

// CacheService is the slice of Redis the services need: webhook event
// dedup and fixed-window counters. *cache.RedisCache satisfies it.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
