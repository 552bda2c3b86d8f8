package journey

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/catalog"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var tracer = otel.Tracer("asteria.internal.journey")

// Phase labels where a conversation sits between first contact and booking.
type Phase string

const (
	PhaseInitial              Phase = "initial"
	PhaseInitialRequest       Phase = "initial_request"
	PhaseConfirmation         Phase = "confirmation"
	PhaseInformationGathering Phase = "information_gathering"
	PhaseDetailedDiscussion   Phase = "detailed_discussion"
)

// Entry is one turn of conversation history.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the per-turn classification of the conversation. It is recomputed
// fresh from (message, history) on every call and never persisted.
type State struct {
	Phase              Phase `json:"phase"`
	ReadyForTicket     bool  `json:"ready_for_ticket"`
	IsConfirming       bool  `json:"is_confirming"`
	IsConsidering      bool  `json:"is_considering"`
	ConversationLength int   `json:"conversation_length"`
	HasServiceContext  bool  `json:"has_service_context"`
	ShouldCreateTicket bool  `json:"should_create_ticket"`
}

// Short assertive words are matched with word boundaries so "yes" inside
// "eyes" or "ok" inside "broker" cannot confirm a booking. Multi-word
// phrases keep plain substring matching.
var shortConfirmations = regexp.MustCompile(`(?i)\b(yes|yeah|yep|ok|okay|sure|confirm|confirmed|perfect|great|absolutely|definitely|proceed|booked?|done)\b`)

var phraseConfirmations = []string{
	"go ahead", "sounds good", "let's do it", "lets do it", "book it",
	"make it happen", "that works", "i'll take it", "please proceed",
	"works for me", "lock it in", "count me in",
}

var consideringPhrases = []string{
	"maybe", "thinking about", "not sure", "possibly", "might",
	"considering", "tell me more", "what are the options", "still deciding",
	"let me think", "exploring", "just curious", "comparing",
}

// Detector labels the journey phase of a conversation turn.
type Detector struct {
	keywords []string
	logger   *logging.Logger
}

// New creates a detector using the catalog's keyword union as service context.
func New(cat *catalog.Catalog, logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Detector{keywords: cat.AllKeywords(), logger: logger}
}

// Detect classifies the current turn. Pure function of (message, history).
func (d *Detector) Detect(ctx context.Context, message string, history []Entry) State {
	_, span := tracer.Start(ctx, "journey.detect")
	defer span.End()

	lower := strings.ToLower(message)
	msgHasService := containsAny(lower, d.keywords)
	histHasService := d.historyHasService(history)

	st := State{
		IsConfirming:       isConfirming(lower),
		IsConsidering:      isConsidering(lower),
		ConversationLength: len(history),
		HasServiceContext:  msgHasService || histHasService,
	}

	switch {
	case len(history) == 0:
		switch {
		case st.IsConfirming && msgHasService:
			st.Phase = PhaseConfirmation
			st.ReadyForTicket = true
		case msgHasService:
			st.Phase = PhaseInitialRequest
		default:
			st.Phase = PhaseInitial
		}
	case msgHasService || histHasService:
		switch {
		case st.IsConfirming:
			st.Phase = PhaseConfirmation
			st.ReadyForTicket = true
		case st.IsConsidering:
			st.Phase = PhaseInformationGathering
		case len(history) > 2:
			st.Phase = PhaseDetailedDiscussion
		default:
			st.Phase = PhaseInformationGathering
		}
	default:
		st.Phase = PhaseInitial
	}

	st.ShouldCreateTicket = st.ReadyForTicket && (msgHasService || histHasService)

	span.SetAttributes(
		attribute.String("journey.phase", string(st.Phase)),
		attribute.Bool("journey.ready_for_ticket", st.ReadyForTicket),
		attribute.Int("journey.history_length", len(history)),
	)
	d.logger.Debug("journey phase detected",
		"phase", st.Phase,
		"ready_for_ticket", st.ReadyForTicket,
		"service_context", st.HasServiceContext,
	)

	return st
}

func (d *Detector) historyHasService(history []Entry) bool {
	for _, e := range history {
		if containsAny(strings.ToLower(e.Content), d.keywords) {
			return true
		}
	}
	return false
}

func isConfirming(lower string) bool {
	if shortConfirmations.MatchString(lower) {
		return true
	}
	return containsAny(lower, phraseConfirmations)
}

func isConsidering(lower string) bool {
	return containsAny(lower, consideringPhrases)
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
