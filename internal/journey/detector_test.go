package journey

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/catalog"
)

func newDetector() *Detector {
	return New(catalog.Default(), nil)
}

func TestDetect_EmptyHistory(t *testing.T) {
	d := newDetector()

	tests := []struct {
		name           string
		message        string
		wantPhase      Phase
		wantReady      bool
		wantShouldTick bool
	}{
		{
			name:           "confirmation plus service keyword",
			message:        "Yes, book the private jet",
			wantPhase:      PhaseConfirmation,
			wantReady:      true,
			wantShouldTick: true,
		},
		{
			name:      "service keyword only",
			message:   "I need a dinner reservation",
			wantPhase: PhaseInitialRequest,
		},
		{
			name:      "plain greeting",
			message:   "Hello!",
			wantPhase: PhaseInitial,
		},
		{
			name:      "confirmation word without service context",
			message:   "Sure thing",
			wantPhase: PhaseInitial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := d.Detect(context.Background(), tt.message, nil)
			assert.Equal(t, tt.wantPhase, st.Phase)
			assert.Equal(t, tt.wantReady, st.ReadyForTicket)
			assert.Equal(t, tt.wantShouldTick, st.ShouldCreateTicket)
			assert.Zero(t, st.ConversationLength)
		})
	}
}

func TestDetect_WithHistory(t *testing.T) {
	d := newDetector()

	serviceHistory := []Entry{
		{Role: "user", Content: "I want to charter a yacht"},
		{Role: "assistant", Content: "Of course. When would you like to sail?"},
	}

	t.Run("confirmation in ongoing service conversation", func(t *testing.T) {
		st := d.Detect(context.Background(), "Perfect, go ahead", serviceHistory)
		assert.Equal(t, PhaseConfirmation, st.Phase)
		assert.True(t, st.ReadyForTicket)
		assert.True(t, st.ShouldCreateTicket)
		assert.True(t, st.HasServiceContext)
	})

	t.Run("still considering", func(t *testing.T) {
		st := d.Detect(context.Background(), "I'm still deciding between dates", serviceHistory)
		assert.Equal(t, PhaseInformationGathering, st.Phase)
		assert.False(t, st.ReadyForTicket)
		assert.True(t, st.IsConsidering)
	})

	t.Run("short history defaults to information gathering", func(t *testing.T) {
		st := d.Detect(context.Background(), "It would be for my wife and me", serviceHistory)
		assert.Equal(t, PhaseInformationGathering, st.Phase)
	})

	t.Run("long history moves to detailed discussion", func(t *testing.T) {
		long := append(serviceHistory, Entry{Role: "user", Content: "Four of us"},
			Entry{Role: "assistant", Content: "Noted."})
		st := d.Detect(context.Background(), "We would prefer the afternoon", long)
		assert.Equal(t, PhaseDetailedDiscussion, st.Phase)
		assert.Equal(t, 4, st.ConversationLength)
	})

	t.Run("no service context anywhere stays initial", func(t *testing.T) {
		chitchat := []Entry{{Role: "user", Content: "thanks!"}}
		st := d.Detect(context.Background(), "you're welcome bot", chitchat)
		assert.Equal(t, PhaseInitial, st.Phase)
		assert.False(t, st.HasServiceContext)
	})
}

// Ticket readiness requires service context: a bare "yes" with no service
// keywords in message or history never creates a ticket.
func TestDetect_ConfirmationWithoutServiceContext(t *testing.T) {
	d := newDetector()

	history := []Entry{{Role: "assistant", Content: "How was your day?"}}
	st := d.Detect(context.Background(), "yes", history)
	assert.False(t, st.ShouldCreateTicket)
}

func TestIsConfirming_WordBoundaries(t *testing.T) {
	// "yes" inside another word must not confirm.
	assert.False(t, isConfirming("my eyesight is fine"))
	assert.True(t, isConfirming("yes please"))
	assert.True(t, isConfirming("sounds good, make it happen"))
	assert.False(t, isConfirming("we are brokers"))
}

func TestDetect_IsPureOverInputs(t *testing.T) {
	d := newDetector()

	history := []Entry{{Role: "user", Content: "book a restaurant"}}
	first := d.Detect(context.Background(), "confirmed", history)
	second := d.Detect(context.Background(), "confirmed", history)
	assert.Equal(t, first, second)
}
