package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sikseb/pkg/config"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// TokenStore persists exactly one token value per key. Writes are
// last-write-wins; no store locks across processes.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string) error
	Delete(ctx context.Context, key string) error
}

// ========== memory ==========

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok && v != "", nil
}

func (s *MemoryStore) Set(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = token
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// ========== file ==========

// FileStore keeps the token in a 0600 file. The key is ignored beyond
// naming: each store owns one path.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(_ context.Context, _ string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read token file %s", s.path)
	}
	token := strings.TrimSpace(string(b))
	return token, token != "", nil
}

// Set writes to a temp file and renames it so a crash never leaves half a token.
func (s *FileStore) Set(_ context.Context, _ string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(err, "create token directory")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace token file")
}

func (s *FileStore) Delete(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token file")
	}
	return nil
}

// ========== redis ==========

// RedisStore shares the token between workstations through redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "sikseb"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisStoreFromConfig dials redis with the configured address.
func NewRedisStoreFromConfig(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStore(client, cfg.Prefix, 0)
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis get token")
	}
	return v, v != "", nil
}

func (s *RedisStore) Set(ctx context.Context, key, token string) error {
	return errors.Wrap(s.client.Set(ctx, s.redisKey(key), token, s.ttl).Err(), "redis set token")
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, s.redisKey(key)).Err(), "redis delete token")
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewStoreFromConfig picks the store named by cfg.Token.Store.
func NewStoreFromConfig(cfg *config.Config) (TokenStore, error) {
	switch cfg.Token.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		return NewFileStore(cfg.Token.FilePath), nil
	case "redis":
		return NewRedisStoreFromConfig(cfg.Redis), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Token.Store)
	}
}
