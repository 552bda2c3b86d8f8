package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
)

type batchRecorder struct {
	mu     sync.Mutex
	scopes []string
	sizes  []int
}

func (r *batchRecorder) flush(scope string, items []Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope)
	r.sizes = append(r.sizes, len(items))
}

func testNotification(id string) Notification {
	return Notification{Ticket: &ticket.ServiceTicket{
		ID:          id,
		BucketID:    "transportation",
		ServiceName: "Private Aviation & Transportation",
		Urgency:     ticket.UrgencyMedium,
		Status:      ticket.StatusPending,
	}}
}

func TestThrottle_AllowsUpToLimit(t *testing.T) {
	th := NewThrottle(3, time.Minute, 10, nil)

	for i := 0; i < 3; i++ {
		dec, _ := th.Admit("scope", testNotification(fmt.Sprintf("SR-%d", i)))
		assert.Equal(t, DecisionSend, dec)
	}
	dec, depth := th.Admit("scope", testNotification("SR-over"))
	assert.Equal(t, DecisionBatch, dec)
	assert.Equal(t, 1, depth)
}

func TestThrottle_ScopesAreIndependent(t *testing.T) {
	th := NewThrottle(1, time.Minute, 10, nil)

	dec, _ := th.Admit("a", testNotification("SR-1"))
	assert.Equal(t, DecisionSend, dec)
	dec, _ = th.Admit("b", testNotification("SR-2"))
	assert.Equal(t, DecisionSend, dec)
	dec, _ = th.Admit("a", testNotification("SR-3"))
	assert.Equal(t, DecisionBatch, dec)
}

func TestThrottle_WindowSlides(t *testing.T) {
	rec := &batchRecorder{}
	th := NewThrottle(1, time.Minute, 10, rec.flush)

	base := time.Now()
	th.now = func() time.Time { return base }
	dec, _ := th.Admit("scope", testNotification("SR-1"))
	require.Equal(t, DecisionSend, dec)

	dec, _ = th.Admit("scope", testNotification("SR-2"))
	require.Equal(t, DecisionBatch, dec)

	// Past the window the scope has budget again.
	th.now = func() time.Time { return base.Add(61 * time.Second) }
	dec, _ = th.Admit("scope", testNotification("SR-3"))
	assert.Equal(t, DecisionSend, dec)
}

func TestThrottle_FullBatchFlushesImmediately(t *testing.T) {
	rec := &batchRecorder{}
	th := NewThrottle(1, time.Minute, 2, rec.flush)

	_, _ = th.Admit("scope", testNotification("SR-0"))
	dec, depth := th.Admit("scope", testNotification("SR-1"))
	require.Equal(t, DecisionBatch, dec)
	require.Equal(t, 1, depth)
	dec, depth = th.Admit("scope", testNotification("SR-2"))
	require.Equal(t, DecisionBatch, dec)
	require.Equal(t, 2, depth)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.sizes, 1)
	assert.Equal(t, 2, rec.sizes[0])
	assert.Equal(t, "scope", rec.scopes[0])
}

func TestThrottle_WindowTimerFlushes(t *testing.T) {
	rec := &batchRecorder{}
	th := NewThrottle(1, 20*time.Millisecond, 10, rec.flush)

	_, _ = th.Admit("scope", testNotification("SR-0"))
	_, _ = th.Admit("scope", testNotification("SR-1"))
	_, _ = th.Admit("scope", testNotification("SR-2"))
	require.Equal(t, 2, th.Pending("scope"))

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.sizes) == 1 && rec.sizes[0] == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, th.Pending("scope"))
}

func TestThrottle_FlushScopeIsIdempotent(t *testing.T) {
	rec := &batchRecorder{}
	th := NewThrottle(1, time.Minute, 10, rec.flush)

	_, _ = th.Admit("scope", testNotification("SR-0"))
	_, _ = th.Admit("scope", testNotification("SR-1"))
	th.FlushScope("scope")
	th.FlushScope("scope")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.sizes, 1)
}
