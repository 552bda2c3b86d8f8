package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func sampleTicket(id, memberID string) *ServiceTicket {
	return &ServiceTicket{
		ID:          id,
		MemberID:    memberID,
		BucketID:    "events",
		ServiceName: "Events & Exclusive Experiences",
		Urgency:     UrgencyMedium,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tk := sampleTicket("SR-11112222", "member-1")
	require.NoError(t, s.Save(ctx, tk))

	got, err := s.Get(ctx, "SR-11112222")
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, tk.BucketID, got.BucketID)
	assert.Equal(t, StatusPending, got.Status)
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "SR-00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListByMember(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTicket("SR-00010001", "member-9")))
	require.NoError(t, s.Save(ctx, sampleTicket("SR-00020002", "member-9")))
	require.NoError(t, s.Save(ctx, sampleTicket("SR-00030003", "other")))

	list, err := s.ListByMember(ctx, "member-9", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Creation order preserved.
	assert.Equal(t, "SR-00010001", list[0].ID)
	assert.Equal(t, "SR-00020002", list[1].ID)

	list, err = s.ListByMember(ctx, "member-9", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SR-00020002", list[0].ID)
}

func TestStore_UpdateStatusForward(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTicket("SR-55556666", "member-2")))

	got, err := s.UpdateStatus(ctx, "SR-55556666", StatusAssigned)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, got.Status)

	got, err = s.UpdateStatus(ctx, "SR-55556666", StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	// Persisted, not just returned.
	reloaded, err := s.Get(ctx, "SR-55556666")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, reloaded.Status)
}

func TestStore_UpdateStatusMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTicket("SR-77778888", "member-3")))
	_, err := s.UpdateStatus(ctx, "SR-77778888", StatusInProgress)
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, "SR-77778888", StatusPending)
	assert.ErrorIs(t, err, ErrStatusRegression)

	// Same-status update is an idempotent no-op.
	got, err := s.UpdateStatus(ctx, "SR-77778888", StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
}

func TestStore_UpdateStatusInvalid(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateStatus(context.Background(), "SR-77778888", Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStore_NilStoreIsPersistenceDisabled(t *testing.T) {
	var s *Store

	assert.NoError(t, s.Save(context.Background(), sampleTicket("SR-1", "m")))
	_, err := s.Get(context.Background(), "SR-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
