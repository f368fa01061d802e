// Package caching implements the fingerprint-keyed caching hook: storage
// backends with TTL and eviction policies, canonical-JSON key generation
// via a non-cryptographic 64-bit hash, and JSON-size estimation for
// eviction decisions.
package caching

import (
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// Entry is one cached record.
type Entry struct {
	Key          string
	Value        hooks.Result
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  int64
	SizeBytes    int64
	TTLMs        int64 // 0 means no expiry
}

// Expired reports whether the entry has outlived its TTL as of now.
func (e *Entry) Expired(now time.Time) bool {
	if e.TTLMs <= 0 {
		return false
	}
	return now.Sub(e.CreatedAt) > time.Duration(e.TTLMs)*time.Millisecond
}

// EvictionPolicy selects the ordering Evict uses to pick removal
// candidates.
type EvictionPolicy string

const (
	PolicyLRU  EvictionPolicy = "lru"  // ascending by LastAccessed
	PolicyLFU  EvictionPolicy = "lfu"  // ascending by AccessCount
	PolicyFIFO EvictionPolicy = "fifo" // ascending by CreatedAt
	PolicySize EvictionPolicy = "size" // descending by SizeBytes
	PolicyTTL  EvictionPolicy = "ttl"  // lazy: handled on access, not by Evict
)

// Storage is the capability every cache backend implements.
type Storage interface {
	Get(key string) (*Entry, bool)
	Put(entry *Entry)
	Remove(key string)
	Clear()
	Size() int
	TotalBytes() int64
	Evict(policy EvictionPolicy, targetBytes int64)
}

// Stats tracks hit/miss counters for a CachingHook.
type Stats struct {
	Hits   int64
	Misses int64
}
