package iocache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds every round trip issued by the Redis store.
const redisTimeout = 5 * time.Second

// Hash fields of a snapshot entry.
const (
	redisFieldValue     = "value"
	redisFieldVersion   = "version"
	redisFieldTimestamp = "timestamp"
)

// RedisCacheStore stores snapshots as Redis hashes under a namespace.
// A sorted set indexes the keys by timestamp so status queries avoid SCAN.
type RedisCacheStore struct {
	client    *redis.Client
	namespace string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the Redis URL and verifies it with PING.
func NewRedisCacheStore(namespace, url string) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis database at %s: %w", opts.Addr, err)
	}
	return NewRedisCacheStoreFromClient(client, namespace), nil
}

// NewRedisCacheStoreFromClient wraps an existing client.
func NewRedisCacheStoreFromClient(client *redis.Client, namespace string) *RedisCacheStore {
	return &RedisCacheStore{client: client, namespace: namespace}
}

func (rs *RedisCacheStore) entryKey(key string) string {
	return rs.namespace + ":" + key
}

func (rs *RedisCacheStore) indexKey() string {
	return rs.namespace + ":index"
}

// Get retrieves a value by key. A missing key reports redis.Nil.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	fields, err := rs.client.HMGet(ctx, rs.entryKey(key), redisFieldValue, redisFieldVersion, redisFieldTimestamp).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(fields) != 3 || fields[0] == nil {
		return nil, 0, 0, redis.Nil
	}

	value, _ := fields[0].(string)
	version, err := strconv.Atoi(fmt.Sprint(fields[1]))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fmt.Sprint(fields[2]), 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt timestamp for %s: %w", key, err)
	}
	return []byte(value), version, ts, nil
}

// Set writes the entry and its index record in one transaction.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rs.entryKey(key),
			redisFieldValue, value,
			redisFieldVersion, version,
			redisFieldTimestamp, timestamp,
		)
		pipe.ZAdd(ctx, rs.indexKey(), redis.Z{Score: float64(timestamp), Member: key})
		return nil
	})
	return err
}

// Clear removes every entry in the namespace.
func (rs *RedisCacheStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	keys, err := rs.client.ZRange(ctx, rs.indexKey(), 0, -1).Result()
	if err != nil {
		return err
	}
	toDelete := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		toDelete = append(toDelete, rs.entryKey(k))
	}
	toDelete = append(toDelete, rs.indexKey())
	return rs.client.Del(ctx, toDelete...).Err()
}

// Close closes the client.
func (rs *RedisCacheStore) Close() error {
	if rs.client == nil {
		return nil
	}
	return rs.client.Close()
}

// GetStatus returns status information about the cache store.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: rs.client != nil}
	if rs.client == nil {
		return status, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	count, err := rs.client.ZCard(ctx, rs.indexKey()).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	status.TotalEntries = int(count)
	if count == 0 {
		return status, nil
	}

	oldest, err := rs.client.ZRangeWithScores(ctx, rs.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get oldest entry time: %w", err)
	}
	latest, err := rs.client.ZRangeWithScores(ctx, rs.indexKey(), -1, -1).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get last entry time: %w", err)
	}
	if len(oldest) == 0 || len(latest) == 0 {
		return status, nil
	}
	status.OldestEntryTime = time.Unix(int64(oldest[0].Score), 0)
	status.LastEntryTime = time.Unix(int64(latest[0].Score), 0)

	keys, err := rs.client.ZRange(ctx, rs.indexKey(), 0, -1).Result()
	if err != nil {
		return status, fmt.Errorf("failed to list entries: %w", err)
	}
	for _, k := range keys {
		n, err := rs.client.HStrLen(ctx, rs.entryKey(k), redisFieldValue).Result()
		if err != nil {
			status.TableSizeBytes = int64(status.TotalEntries) * 1000
			break
		}
		status.TableSizeBytes += n
	}
	return status, nil
}
