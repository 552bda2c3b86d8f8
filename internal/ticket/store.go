package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	ticketKeyPrefix      = "ticket:"
	memberIndexKeyPrefix = "member_tickets:"
)

// ErrNotFound is returned when a ticket id has no document.
var ErrNotFound = errors.New("ticket: not found")

// ErrStatusRegression is returned when an update would move a ticket's
// status backwards in the workflow.
var ErrStatusRegression = errors.New("ticket: status cannot move backwards")

// ErrInvalidStatus is returned for statuses outside the workflow.
var ErrInvalidStatus = errors.New("ticket: invalid status")

// Store persists tickets as JSON documents in Redis, with a per-member
// index list so a member's history can be listed in creation order.
type Store struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewStore creates a ticket store. A nil client yields a nil store, which
// callers treat as persistence-disabled.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		return nil
	}
	return &Store{
		redis:  redisClient,
		tracer: otel.Tracer("asteria.internal.ticket.store"),
	}
}

// Save writes the ticket document and appends it to the member index.
func (s *Store) Save(ctx context.Context, t *ServiceTicket) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if t == nil || t.ID == "" {
		return errors.New("ticket: save requires a ticket with an id")
	}

	ctx, span := s.tracer.Start(ctx, "ticket.store.save")
	defer span.End()

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("ticket: marshal %s: %w", t.ID, err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, ticketKey(t.ID), data, 0)
	if t.MemberID != "" {
		pipe.RPush(ctx, memberIndexKey(t.MemberID), t.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("ticket: save %s: %w", t.ID, err)
	}
	return nil
}

// Get loads a ticket document by id.
func (s *Store) Get(ctx context.Context, id string) (*ServiceTicket, error) {
	if s == nil || s.redis == nil {
		return nil, ErrNotFound
	}

	ctx, span := s.tracer.Start(ctx, "ticket.store.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, ticketKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("ticket: get %s: %w", id, err)
	}

	var t ServiceTicket
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ticket: unmarshal %s: %w", id, err)
	}
	return &t, nil
}

// ListByMember returns a member's tickets in creation order, newest last.
// Documents missing from the index are skipped rather than failing the list.
func (s *Store) ListByMember(ctx context.Context, memberID string, limit int64) ([]*ServiceTicket, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}

	ctx, span := s.tracer.Start(ctx, "ticket.store.list_by_member")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	ids, err := s.redis.LRange(ctx, memberIndexKey(memberID), start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("ticket: list member %s: %w", memberID, err)
	}

	out := make([]*ServiceTicket, 0, len(ids))
	for _, id := range ids {
		t, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// UpdateStatus moves a ticket forward in the workflow. Updates to the
// current status are no-ops; moving backwards returns ErrStatusRegression.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) (*ServiceTicket, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if statusRank[status] < statusRank[t.Status] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStatusRegression, t.Status, status)
	}
	if status == t.Status {
		return t, nil
	}

	t.Status = status
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("ticket: marshal %s: %w", id, err)
	}
	if err := s.redis.Set(ctx, ticketKey(id), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("ticket: update %s: %w", id, err)
	}
	return t, nil
}

func ticketKey(id string) string {
	return ticketKeyPrefix + id
}

func memberIndexKey(memberID string) string {
	return memberIndexKeyPrefix + memberID
}
