package cart

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{Client: client, TTL: ttl}
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return raw, err
}

// Save writes the cart and restarts its expiry.
func (s *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	return s.Client.Set(ctx, key, data, s.TTL).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

// CompareAndSwap replaces the value under key with next only while it still equals old.
// A nil next deletes the key. The read and the write run under WATCH, so a concurrent
// writer makes the swap report false.
func (s *RedisStorage) CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error) {
	swapped := false
	err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if !bytes.Equal(cur, old) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if next == nil {
				p.Del(ctx, key)
			} else {
				p.Set(ctx, key, next, s.TTL)
			}
			return nil
		})
		if err != nil {
			return err
		}
		swapped = true
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return swapped, err
}

// MemoryStorage keeps carts in process memory. Carts are lost on restart.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: map[string][]byte{}}
}

func (s *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.carts[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (s *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.carts[key] = buf
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

func (s *MemoryStorage) CompareAndSwap(_ context.Context, key string, old, next []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !bytes.Equal(s.carts[key], old) {
		return false, nil
	}
	if next == nil {
		delete(s.carts, key)
		return true, nil
	}
	buf := make([]byte, len(next))
	copy(buf, next)
	s.carts[key] = buf
	return true, nil
}
