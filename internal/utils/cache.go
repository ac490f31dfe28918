package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key building
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// All helpers treat a nil client as "cache disabled": reads miss, writes and
// deletes succeed, locks are always granted.

// WalletsCacheKey is the cache key for a user's wallet list
func WalletsCacheKey(userID uint) string {
	return "wallets:user:" + strconv.FormatUint(uint64(userID), 10)
}

// TransactionsCacheKey is the cache key for one page of a wallet's ledger
func TransactionsCacheKey(walletID uint, limit, offset int) string {
	return TransactionsCachePrefix(walletID) + "limit:" + strconv.Itoa(limit) + ":offset:" + strconv.Itoa(offset)
}

// TransactionsCachePrefix prefixes every cached page of a wallet's ledger
func TransactionsCachePrefix(walletID uint) string {
	return "wallettx:" + strconv.FormatUint(uint64(walletID), 10) + ":"
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Cache disabled
	}
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
	if rdb == nil {
		return nil // Cache disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil // Cache disabled
	}
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// DeleteCachePrefix deletes every key starting with prefix
func DeleteCachePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	if rdb == nil {
		return nil // Cache disabled
	}
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator() // Walk matching keys without blocking Redis
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// AcquireLock takes a short-lived exclusive lock. It returns false when
// someone else holds it.
func AcquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil // Cache disabled, rely on the database constraint
	}
	return rdb.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock drops a lock taken with AcquireLock
func ReleaseLock(ctx context.Context, rdb *redis.Client, key string) error {
	return DeleteCache(ctx, rdb, key)
}
