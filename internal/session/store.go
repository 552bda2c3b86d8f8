package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/journey"
)

const historyKeyPrefix = "session_history:"

// Store persists per-session conversation history in Redis so thin clients
// can omit conversationHistory from chat requests. Entries expire with the
// session TTL and the list is trimmed to a bounded length.
type Store struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

// NewStore creates a session history store. A nil client disables history
// persistence; callers then rely on client-supplied history.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{
		redis:       redisClient,
		tracer:      otel.Tracer("asteria.internal.session.store"),
		ttl:         ttl,
		maxMessages: 200,
	}
}

// Append adds one conversation turn to the session history.
func (s *Store) Append(ctx context.Context, sessionID string, entry journey.Entry) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("session: sessionID required")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("session: marshal entry: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "session.store.append")
	defer span.End()

	key := historyKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: append to %s: %w", sessionID, err)
	}
	return nil
}

// History returns the session's conversation turns, oldest first.
func (s *Store) History(ctx context.Context, sessionID string, limit int64) ([]journey.Entry, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if sessionID == "" {
		return nil, errors.New("session: sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "session.store.history")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, historyKey(sessionID), start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []journey.Entry{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: history of %s: %w", sessionID, err)
	}

	out := make([]journey.Entry, 0, len(raw))
	for _, item := range raw {
		var e journey.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}
