// README: Session stores: in-memory with TTL sweep, and Redis for cross-process durability.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the session persistence contract. Get returns (nil, nil) for
// an unknown session id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session  *Session
	expireAt time.Time
}

// MemoryStore keeps sessions in a map guarded by a mutex. Entries expire
// after ttl; Sweep removes the expired ones and is meant to run on a
// schedule.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, ttl: ttl}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || time.Now().After(entry.expireAt) {
		return nil, nil
	}
	return entry.session, nil
}

func (s *MemoryStore) Put(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = memoryEntry{session: session, expireAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, entry := range s.entries {
		if now.After(entry.expireAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RedisStore persists sessions as JSON under a key prefix, relying on
// Redis TTLs for expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *RedisStore) Put(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", session.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
