package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/extract"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
)

type stubChatOps struct {
	mu      sync.Mutex
	tickets []Notification
	batches [][]Notification
	err     error
}

func (s *stubChatOps) PostTicket(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tickets = append(s.tickets, n)
	return nil
}

func (s *stubChatOps) PostBatch(_ context.Context, _ string, items []Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, items)
	return nil
}

type stubSMS struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (s *stubSMS) SendSMS(_ context.Context, _, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.bodies = append(s.bodies, body)
	return nil
}

func newTestDispatcher(chatOps ChatOpsChannel, sms SMSChannel, limit int) *Dispatcher {
	return NewDispatcher(chatOps, sms, DispatcherOptions{
		RatePerMinute: limit,
		BatchWindow:   time.Minute,
		BatchMax:      10,
		SMSTo:         []string{"+15550009999"},
	}, nil, nil)
}

func mediumTicket(id string) *ticket.ServiceTicket {
	return &ticket.ServiceTicket{
		ID:          id,
		MemberID:    "m-1",
		BucketID:    "transportation",
		ServiceName: "Private Aviation & Transportation",
		Urgency:     ticket.UrgencyMedium,
		Status:      ticket.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDispatch_SendsToBothChannels(t *testing.T) {
	chat := &stubChatOps{}
	sms := &stubSMS{}
	d := newTestDispatcher(chat, sms, 5)

	res := d.Dispatch(context.Background(), Notification{
		Ticket:          mediumTicket("SR-00001111"),
		OriginalMessage: "I need a private jet from NYC to Monaco",
	})

	assert.True(t, res.Sent)
	assert.False(t, res.Throttled)
	assert.Empty(t, res.Err)
	require.Len(t, chat.tickets, 1)
	require.Len(t, sms.bodies, 1)
	assert.Contains(t, sms.bodies[0], "SR-00001111")
}

func TestDispatch_OverLimitBatches(t *testing.T) {
	chat := &stubChatOps{}
	d := newTestDispatcher(chat, nil, 5)

	var batched int
	for i := 0; i < 8; i++ {
		res := d.Dispatch(context.Background(), Notification{Ticket: mediumTicket(fmt.Sprintf("SR-%08d", i))})
		if res.Batched {
			batched++
			assert.True(t, res.Throttled)
			assert.False(t, res.Sent)
		}
	}

	assert.Equal(t, 3, batched)
	assert.Len(t, chat.tickets, 5)
}

func TestDispatch_CriticalBypassesThrottle(t *testing.T) {
	chat := &stubChatOps{}
	d := newTestDispatcher(chat, nil, 1)

	// Exhaust the scope's budget.
	_ = d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-1")})
	res := d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-2")})
	require.True(t, res.Batched)

	critical := mediumTicket("SR-3")
	critical.Urgency = ticket.UrgencyCritical
	res = d.Dispatch(context.Background(), Notification{Ticket: critical})

	assert.True(t, res.Sent)
	assert.False(t, res.Throttled)
	assert.False(t, res.Batched)
}

func TestDispatch_DeliveryFailureIsReportedNotThrown(t *testing.T) {
	chat := &stubChatOps{err: errors.New("webhook 500")}
	d := newTestDispatcher(chat, nil, 5)

	res := d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-1")})

	assert.False(t, res.Sent)
	assert.Contains(t, res.Err, "webhook 500")
}

func TestDispatch_NoChannelsConfigured(t *testing.T) {
	d := newTestDispatcher(nil, nil, 5)

	res := d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-1")})

	assert.False(t, res.Sent)
	assert.Equal(t, "no channels configured", res.Err)
}

func TestDispatch_NilTicket(t *testing.T) {
	d := newTestDispatcher(&stubChatOps{}, nil, 5)

	res := d.Dispatch(context.Background(), Notification{})

	assert.False(t, res.Sent)
	assert.Equal(t, "no ticket", res.Err)
}

func TestDispatch_BatchWindowDeliversCombinedAlert(t *testing.T) {
	chat := &stubChatOps{}
	d := NewDispatcher(chat, nil, DispatcherOptions{
		RatePerMinute: 1,
		BatchWindow:   20 * time.Millisecond,
		BatchMax:      10,
	}, nil, nil)

	_ = d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-1")})
	_ = d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-2")})
	_ = d.Dispatch(context.Background(), Notification{Ticket: mediumTicket("SR-3")})

	assert.Eventually(t, func() bool {
		chat.mu.Lock()
		defer chat.mu.Unlock()
		return len(chat.batches) == 1 && len(chat.batches[0]) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestFormatShort(t *testing.T) {
	n := Notification{Ticket: &ticket.ServiceTicket{
		ID:          "SR-12345678",
		MemberID:    "m-42",
		ServiceName: "Private Aviation & Transportation",
		Urgency:     ticket.UrgencyHigh,
		Details: extract.Details{
			Dates:       "tomorrow",
			Guests:      4,
			Location:    "NYC",
			Destination: "Monaco",
		},
	}}

	body := FormatShort(n)
	assert.Contains(t, body, "HIGH")
	assert.Contains(t, body, "SR-12345678")
	assert.Contains(t, body, "NYC to Monaco")
	assert.Contains(t, body, "tomorrow")
	assert.Contains(t, body, "(4 guests)")
	assert.True(t, strings.HasPrefix(body, "🔴"))
}

func TestFormatChatOps_IncludesDetailsAndMemberWords(t *testing.T) {
	n := Notification{
		Ticket: &ticket.ServiceTicket{
			ID:          "SR-12345678",
			MemberID:    "m-42",
			ServiceName: "Events & Experiences",
			Urgency:     ticket.UrgencyMedium,
			Status:      ticket.StatusPending,
			Details:     extract.Details{Budget: "$5k", Guests: 2},
			CreatedAt:   time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC),
		},
		OriginalMessage:   "dinner for 2 tonight, budget $5k",
		AssistantResponse: "Certainly, arranging that now.",
	}

	text, blocks := FormatChatOps(n)
	assert.Contains(t, text, "SR-12345678")
	assert.NotEmpty(t, blocks)
}
