package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/utils"
)

// ErrSessionNotFound is returned when a session token has no parked state,
// either because it never existed or its TTL expired (an abandoned
// traversal).
var ErrSessionNotFound = errors.New("questionnaire session not found")

// SessionStore parks questionnaire traversal state between requests. Each
// session lives under its own token with a TTL; abandonment is simply
// expiry.
type SessionStore interface {
	Put(ctx context.Context, token string, state questionnaire.State, ttl time.Duration) error
	Get(ctx context.Context, token string) (questionnaire.State, error)
	Delete(ctx context.Context, token string) error
}

type redisSessionStore struct {
	client *redis.Client
	logger utils.Logger
}

func NewRedisSessionStore(client *redis.Client, logger utils.Logger) SessionStore {
	return &redisSessionStore{
		client: client,
		logger: logger,
	}
}

func sessionKey(token string) string {
	return "questionnaire:session:" + token
}

func (r *redisSessionStore) Put(ctx context.Context, token string, state questionnaire.State, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session state: %w", err)
	}
	return nil
}

func (r *redisSessionStore) Get(ctx context.Context, token string) (questionnaire.State, error) {
	payload, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return questionnaire.State{}, ErrSessionNotFound
		}
		return questionnaire.State{}, fmt.Errorf("load session state: %w", err)
	}

	var state questionnaire.State
	if err := json.Unmarshal(payload, &state); err != nil {
		// Corrupt state is treated as absent; the caller starts a fresh
		// traversal rather than failing the request.
		r.logger.Warn("Discarding corrupt session state", "token", token, "error", err)
		return questionnaire.State{}, ErrSessionNotFound
	}

	return state, nil
}

func (r *redisSessionStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}

// MemorySessionStore is an in-process SessionStore for tests.
type MemorySessionStore struct {
	states map[string]questionnaire.State
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{states: make(map[string]questionnaire.State)}
}

func (m *MemorySessionStore) Put(ctx context.Context, token string, state questionnaire.State, ttl time.Duration) error {
	m.states[token] = state
	return nil
}

func (m *MemorySessionStore) Get(ctx context.Context, token string) (questionnaire.State, error) {
	state, ok := m.states[token]
	if !ok {
		return questionnaire.State{}, ErrSessionNotFound
	}
	return state, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, token string) error {
	delete(m.states, token)
	return nil
}
