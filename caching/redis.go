package caching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/agentkit/hookflow/corelog"
)

// RedisStorage is a Redis-backed Storage, grounded on core's
// RedisSchemaCache: prefix+TTL keying, graceful degrade (log and miss) on
// Redis error rather than propagating it to the hook caller. Eviction by
// policy is not delegated to Redis (Redis itself handles TTL expiry);
// Evict scans the key prefix only under the ttl policy and does nothing
// for any other policy, so this backend stays bounded by TTL alone.
type RedisStorage struct {
	client *redis.Client
	prefix string
	log    corelog.Logger
}

func NewRedisStorage(client *redis.Client, prefix string, log corelog.Logger) *RedisStorage {
	if log == nil {
		log = corelog.NoOp()
	}
	return &RedisStorage{client: client, prefix: prefix, log: log}
}

func (s *RedisStorage) fullKey(key string) string { return s.prefix + key }

func (s *RedisStorage) Get(key string) (*Entry, bool) {
	ctx := context.Background()
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("redis cache get failed", "key", key, "err", err.Error())
		}
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.log.Warn("redis cache entry corrupt", "key", key, "err", err.Error())
		return nil, false
	}
	if e.Expired(time.Now()) {
		return nil, false
	}
	e.LastAccessed = time.Now()
	e.AccessCount++
	s.Put(&e)
	return &e, true
}

func (s *RedisStorage) Put(entry *Entry) {
	ctx := context.Background()
	b, err := json.Marshal(entry)
	if err != nil {
		s.log.Warn("redis cache marshal failed", "key", entry.Key, "err", err.Error())
		return
	}
	ttl := time.Duration(0)
	if entry.TTLMs > 0 {
		ttl = time.Duration(entry.TTLMs) * time.Millisecond
	}
	if err := s.client.Set(ctx, s.fullKey(entry.Key), b, ttl).Err(); err != nil {
		s.log.Warn("redis cache set failed", "key", entry.Key, "err", err.Error())
	}
}

func (s *RedisStorage) Remove(key string) {
	_ = s.client.Del(context.Background(), s.fullKey(key)).Err()
}

func (s *RedisStorage) Clear() {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = s.client.Del(ctx, iter.Val()).Err()
	}
}

func (s *RedisStorage) Size() int {
	ctx := context.Background()
	var count int
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count
}

func (s *RedisStorage) TotalBytes() int64 {
	ctx := context.Background()
	var total int64
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if n, err := s.client.StrLen(ctx, iter.Val()).Result(); err == nil {
			total += n
		}
	}
	return total
}

// Evict removes the TTL-lazy-expired entries it can find by scanning the
// prefix; policies other than ttl rely on Redis's own TTL-driven eviction
// rather than a client-side size scan.
func (s *RedisStorage) Evict(policy EvictionPolicy, targetBytes int64) {
	if policy != PolicyTTL {
		return
	}
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		if e.Expired(time.Now()) {
			_ = s.client.Del(ctx, iter.Val()).Err()
		}
	}
}
