package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // String conversion
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache keys used across handlers. Product listings and wallet balances are
// cached read-through and invalidated explicitly after every mutation.
const (
	KeyProductsAll          = "products:all"           // Full catalog with season names
	KeyProductsActiveSeason = "products:active-season" // In-stock products of the live season
	KeyProductsYearRound    = "products:year-round"    // In-stock always-available products
)

// WalletKey returns the cache key for one user's wallet.
func WalletKey(userID uint) string {
	return "wallet:user:" + strconv.Itoa(int(userID))
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// InvalidateListings drops every cached product listing. Called after any
// product or season mutation.
func InvalidateListings(ctx context.Context, rdb *redis.Client) error {
	return DeleteCache(ctx, rdb, KeyProductsAll, KeyProductsActiveSeason, KeyProductsYearRound)
}
