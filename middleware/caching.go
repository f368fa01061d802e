package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// KeyFunc derives a cache key from a hook invocation. The default keys on
// (hook.id, point).
type KeyFunc func(h hooks.Hook, hctx *hooks.Context) string

func defaultKeyFunc(h hooks.Hook, hctx *hooks.Context) string {
	return fmt.Sprintf("%s:%s", h.ID(), hctx.Point)
}

type cachingEntry struct {
	result    hooks.Result
	expiresAt time.Time
	hasTTL    bool
}

// Caching is a small pipeline-local result cache, distinct from the
// fingerprint-keyed caching hook in package caching: it caches whatever a
// middleware-wrapped hook returns, keyed by KeyFunc, honoring TTL and
// evicting the oldest entry (FIFO) once MaxEntries is reached.
type Caching struct {
	KeyFunc    KeyFunc
	TTL        time.Duration // 0 means no expiry
	MaxEntries int

	mu      sync.Mutex
	data    map[string]cachingEntry
	order   []string
}

func NewCaching(ttl time.Duration, maxEntries int) *Caching {
	return &Caching{
		KeyFunc:    defaultKeyFunc,
		TTL:        ttl,
		MaxEntries: maxEntries,
		data:       map[string]cachingEntry{},
	}
}

func (m *Caching) Process(ctx context.Context, h hooks.Hook, hctx *hooks.Context, next Next) (hooks.Result, error) {
	keyFn := m.KeyFunc
	if keyFn == nil {
		keyFn = defaultKeyFunc
	}
	key := keyFn(h, hctx)

	m.mu.Lock()
	entry, ok := m.data[key]
	if ok && entry.hasTTL && time.Now().After(entry.expiresAt) {
		delete(m.data, key)
		ok = false
	}
	m.mu.Unlock()
	if ok {
		return entry.result, nil
	}

	r, err := next(ctx, hctx)
	if err != nil {
		return r, err
	}

	m.mu.Lock()
	if m.MaxEntries > 0 && len(m.data) >= m.MaxEntries {
		if len(m.order) > 0 {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.data, oldest)
		}
	}
	ce := cachingEntry{result: r}
	if m.TTL > 0 {
		ce.hasTTL = true
		ce.expiresAt = time.Now().Add(m.TTL)
	}
	if _, exists := m.data[key]; !exists {
		m.order = append(m.order, key)
	}
	m.data[key] = ce
	m.mu.Unlock()

	return r, nil
}
