package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cppla/socialhub/config"
)

// ErrSessionNotFound is returned for unknown, deleted or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions between requests.
type SessionStore interface {
	Create(ctx context.Context, userID uint) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewSessionStore builds the store selected by cfg.SessionStore.
func NewSessionStore(cfg config.AppConfig) (SessionStore, error) {
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rc := NewRedis(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisSessionStore(rc, ttl), nil
	default:
		return NewMemorySessionStore(ttl), nil
	}
}

// NewRedis returns a Redis client based on cfg.
func NewRedis(cfg config.AppConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func newSession(userID uint, ttl time.Duration) Session {
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// MemorySessionStore keeps sessions in process memory (single-instance only).
// Expired entries are dropped on read and swept on every Create.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]Session{}, ttl: ttl}
}

func (m *MemorySessionStore) Create(_ context.Context, userID uint) (Session, error) {
	s := newSession(userID, m.ttl)
	m.mu.Lock()
	m.sweepLocked(s.CreatedAt)
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// sweepLocked drops every session expired at now. Caller holds mu.
func (m *MemorySessionStore) sweepLocked(now time.Time) {
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if time.Now().After(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Close() error { return nil }

// RedisSessionStore keeps sessions as JSON values with a TTL so every instance sees them.
type RedisSessionStore struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore wraps an existing client.
func NewRedisSessionStore(rc *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rc: rc, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisSessionStore) Create(ctx context.Context, userID uint) (Session, error) {
	s := newSession(userID, r.ttl)
	b, err := json.Marshal(s)
	if err != nil {
		return Session{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.rc.Set(ctx, sessionKey(s.ID), b, r.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := r.rc.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.rc.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Close() error {
	return r.rc.Close()
}
