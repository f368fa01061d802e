package workflow

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/agentkit/hookflow/corerr"
)

// KVStore is the pluggable persistence capability StateManager and
// Checkpoint build on: save/load/delete plus a prefix-pattern key listing.
type KVStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, pattern string) ([]string, error)
}

// MemoryKVStore is an in-process map-backed KVStore.
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: map[string][]byte{}}
}

func (s *MemoryKVStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.data[key] = cp
	return nil
}

func (s *MemoryKVStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, corerr.New("MemoryKVStore.Load", corerr.ErrKeyNotFound, key, "no prior state")
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *MemoryKVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryKVStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.data {
		if matchPattern(pattern, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// matchPattern supports only a trailing '*' prefix match, per §6.
func matchPattern(pattern, key string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(key, pattern[:len(pattern)-1])
	}
	return pattern == key
}

// fileKeyName maps a key to a filesystem-safe name: ':' -> '_'.
func fileKeyName(key string) string {
	return strings.ReplaceAll(key, ":", "_")
}

// FileKVStore persists one file per key under BasePath, named per §6's
// checkpoint file layout (<base_path>/<key-with-colons-replaced>.json).
type FileKVStore struct {
	BasePath string
	mu       sync.Mutex
}

func NewFileKVStore(basePath string) *FileKVStore {
	return &FileKVStore{BasePath: basePath}
}

func (s *FileKVStore) path(key string) string {
	return filepath.Join(s.BasePath, fileKeyName(key)+".json")
}

func (s *FileKVStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *FileKVStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, corerr.New("FileKVStore.Load", corerr.ErrKeyNotFound, key, "no prior state")
		}
		return nil, err
	}
	return data, nil
}

func (s *FileKVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileKVStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		key := strings.ReplaceAll(name, "_", ":")
		if matchPattern(pattern, key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// RedisKVStore persists keys in Redis under Prefix with plain SET, GET and
// DEL; writes are not wrapped in a WATCH transaction. ListKeys uses SCAN.
type RedisKVStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{Client: client, Prefix: prefix}
}

func (s *RedisKVStore) fullKey(key string) string { return s.Prefix + key }

func (s *RedisKVStore) Save(ctx context.Context, key string, data []byte) error {
	return s.Client.Set(ctx, s.fullKey(key), data, 0).Err()
}

func (s *RedisKVStore) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := s.Client.Get(ctx, s.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, corerr.New("RedisKVStore.Load", corerr.ErrKeyNotFound, key, "no prior state")
	}
	return v, err
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, s.fullKey(key)).Err()
}

func (s *RedisKVStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	scanPattern := s.fullKey(pattern)
	if !strings.HasSuffix(scanPattern, "*") {
		scanPattern += "*"
	}
	iter := s.Client.Scan(ctx, 0, scanPattern, 0).Iterator()
	var out []string
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), s.Prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
