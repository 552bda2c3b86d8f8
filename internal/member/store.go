package member

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const memberKeyPrefix = "member:"

// Tier is a member's service level. Unknown profiles default to standard.
type Tier string

const (
	TierStandard   Tier = "standard"
	TierFiftyK     Tier = "fifty-k"
	TierCorporate  Tier = "corporate"
	TierFounding10 Tier = "founding10"
)

// Profile is the member document kept in the session store.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Tier      Tier      `json:"tier"`
	Phone     string    `json:"phone,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps member profiles as JSON documents in Redis.
type Store struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewStore creates a member store; nil client means profiles are not persisted.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		return nil
	}
	return &Store{
		redis:  redisClient,
		tracer: otel.Tracer("asteria.internal.member.store"),
	}
}

// Resolve merges an inbound profile payload with the stored document.
// Inbound fields win when non-empty; unknown members get a standard-tier
// profile. The merged document is written back so later turns see it.
func (s *Store) Resolve(ctx context.Context, inbound Profile) (Profile, error) {
	if strings.TrimSpace(inbound.ID) == "" {
		return Profile{ID: "anonymous", Tier: TierStandard}, nil
	}

	stored, err := s.get(ctx, inbound.ID)
	if err != nil && !errors.Is(err, redis.Nil) {
		// Degrade to the inbound payload rather than failing the chat turn.
		stored = Profile{}
	}

	merged := stored
	merged.ID = inbound.ID
	if inbound.Name != "" {
		merged.Name = inbound.Name
	}
	if inbound.Tier != "" {
		merged.Tier = inbound.Tier
	}
	if inbound.Phone != "" {
		merged.Phone = inbound.Phone
	}
	if merged.Tier == "" {
		merged.Tier = TierStandard
	}
	merged.UpdatedAt = time.Now().UTC()

	if err := s.put(ctx, merged); err != nil {
		return merged, err
	}
	return merged, nil
}

func (s *Store) get(ctx context.Context, id string) (Profile, error) {
	if s == nil || s.redis == nil {
		return Profile{}, redis.Nil
	}

	ctx, span := s.tracer.Start(ctx, "member.store.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, memberKey(id)).Result()
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		span.RecordError(err)
		return Profile{}, fmt.Errorf("member: unmarshal %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) put(ctx context.Context, p Profile) error {
	if s == nil || s.redis == nil {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "member.store.put")
	defer span.End()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("member: marshal %s: %w", p.ID, err)
	}
	if err := s.redis.Set(ctx, memberKey(p.ID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("member: put %s: %w", p.ID, err)
	}
	return nil
}

func memberKey(id string) string {
	return memberKeyPrefix + id
}
