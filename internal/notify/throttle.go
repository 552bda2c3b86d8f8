package notify

import (
	"sync"
	"time"
)

// Decision is the throttle's verdict for one notification.
type Decision int

const (
	// DecisionSend means the notification is within the rate limit.
	DecisionSend Decision = iota
	// DecisionBatch means the notification was queued into the current
	// batch window and will go out as part of a combined alert.
	DecisionBatch
)

// FlushFunc delivers a closed batch. It runs outside the throttle lock.
type FlushFunc func(scope string, items []Notification)

// Throttle bounds notification volume per scope with a sliding one-minute
// window, queueing overflow into a short batch window. It is an explicit,
// injectable object rather than package state so call sites keep working if
// a shared backend replaces the in-memory counters. State is process-local
// and resets on restart.
type Throttle struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	batchTL  time.Duration
	batchMax int
	flush    FlushFunc
	now      func() time.Time

	history map[string][]time.Time
	batches map[string]*pendingBatch
}

type pendingBatch struct {
	items []Notification
	timer *time.Timer
}

// NewThrottle creates a throttle allowing limit sends per minute per scope.
// Overflow is held for batchWindow (capped at batchMax items) and handed to
// flush as one combined delivery.
func NewThrottle(limit int, batchWindow time.Duration, batchMax int, flush FlushFunc) *Throttle {
	if limit <= 0 {
		limit = 5
	}
	if batchWindow <= 0 {
		batchWindow = 10 * time.Second
	}
	if batchMax <= 0 {
		batchMax = 10
	}
	return &Throttle{
		limit:    limit,
		window:   time.Minute,
		batchTL:  batchWindow,
		batchMax: batchMax,
		flush:    flush,
		now:      time.Now,
		history:  make(map[string][]time.Time),
		batches:  make(map[string]*pendingBatch),
	}
}

// Admit decides whether n may be sent now. DecisionSend records the send
// against the scope's window. DecisionBatch queues n; the returned depth is
// the batch's size including n. A batch reaching batchMax flushes
// immediately instead of waiting for the window to close.
func (t *Throttle) Admit(scope string, n Notification) (Decision, int) {
	t.mu.Lock()

	now := t.now()
	recent := pruneBefore(t.history[scope], now.Add(-t.window))

	if len(recent) < t.limit {
		t.history[scope] = append(recent, now)
		t.mu.Unlock()
		return DecisionSend, 0
	}
	t.history[scope] = recent

	b, ok := t.batches[scope]
	if !ok {
		b = &pendingBatch{}
		b.timer = time.AfterFunc(t.batchTL, func() { t.FlushScope(scope) })
		t.batches[scope] = b
	}
	b.items = append(b.items, n)
	depth := len(b.items)

	var full []Notification
	if depth >= t.batchMax {
		full = t.takeBatchLocked(scope)
	}
	t.mu.Unlock()

	if full != nil {
		t.deliverBatch(scope, full)
	}
	return DecisionBatch, depth
}

// FlushScope closes the scope's batch window and delivers whatever queued.
func (t *Throttle) FlushScope(scope string) {
	t.mu.Lock()
	items := t.takeBatchLocked(scope)
	t.mu.Unlock()

	if items != nil {
		t.deliverBatch(scope, items)
	}
}

// Pending returns the scope's current batch depth.
func (t *Throttle) Pending(scope string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.batches[scope]; ok {
		return len(b.items)
	}
	return 0
}

func (t *Throttle) takeBatchLocked(scope string) []Notification {
	b, ok := t.batches[scope]
	if !ok || len(b.items) == 0 {
		delete(t.batches, scope)
		return nil
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	delete(t.batches, scope)
	return b.items
}

func (t *Throttle) deliverBatch(scope string, items []Notification) {
	if t.flush != nil {
		t.flush(scope, items)
	}
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	out := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			out = append(out, ts)
		}
	}
	return out
}
