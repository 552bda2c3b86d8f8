package concierge

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/journey"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/member"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/notify"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/observability/metrics"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/session"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var serviceTracer = otel.Tracer("asteria.internal.concierge.service")

// ErrEmptyMessage rejects chat turns with no content.
var ErrEmptyMessage = errors.New("concierge: message required")

// Notifier dispatches ticket alerts to the operations channels.
type Notifier interface {
	Dispatch(ctx context.Context, n notify.Notification) notify.Result
}

// TicketStore persists tickets.
type TicketStore interface {
	Save(ctx context.Context, t *ticket.ServiceTicket) error
}

// ChatRequest is one member turn. ConversationHistory is optional; when the
// client omits it and supplies a SessionID, the server-side history is used.
type ChatRequest struct {
	Message             string          `json:"message"`
	SessionID           string          `json:"sessionId,omitempty"`
	ConversationHistory []journey.Entry `json:"conversationHistory,omitempty"`
	MemberProfile       *member.Profile `json:"memberProfile,omitempty"`
}

// ChatResponse is what the member-facing client receives. Ticket creation
// and notification outcomes are internal; only the request id leaks through,
// and only when a ticket was created.
type ChatResponse struct {
	Success          bool   `json:"success"`
	Response         string `json:"response"`
	SessionID        string `json:"sessionId"`
	ServiceRequestID string `json:"serviceRequestId,omitempty"`
}

// Service runs one chat turn end to end: resolve the member, detect the
// journey phase, generate the concierge reply, and, when the member has
// confirmed a service request, create and dispatch the ticket.
type Service struct {
	members   *member.Store
	sessions  *session.Store
	detector  *journey.Detector
	builder   *ticket.Builder
	tickets   TicketStore
	notifier  Notifier
	completer Completer
	metrics   *metrics.PipelineMetrics
	logger    *logging.Logger
}

// NewService wires the chat pipeline. completer and notifier may be nil;
// the service then uses canned replies and skips alerting, but tickets are
// still created and stored.
func NewService(
	members *member.Store,
	sessions *session.Store,
	detector *journey.Detector,
	builder *ticket.Builder,
	tickets TicketStore,
	notifier Notifier,
	completer Completer,
	m *metrics.PipelineMetrics,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		members:   members,
		sessions:  sessions,
		detector:  detector,
		builder:   builder,
		tickets:   tickets,
		notifier:  notifier,
		completer: completer,
		metrics:   m,
		logger:    logger,
	}
}

// HandleTurn processes one member message. Pipeline failures past reply
// generation are logged and absorbed; the member always gets a response.
func (s *Service) HandleTurn(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	started := time.Now()
	ctx, span := serviceTracer.Start(ctx, "concierge.turn")
	defer span.End()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ChatResponse{}, ErrEmptyMessage
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	var inbound member.Profile
	if req.MemberProfile != nil {
		inbound = *req.MemberProfile
	}
	profile, err := s.members.Resolve(ctx, inbound)
	if err != nil {
		// The merged profile is still usable; resolution errors only mean
		// the write-back failed.
		s.logger.Warn("member resolution degraded", "member_id", profile.ID, "error", err)
	}

	history := req.ConversationHistory
	if len(history) == 0 {
		if stored, err := s.sessions.History(ctx, req.SessionID, 0); err == nil {
			history = stored
		} else {
			s.logger.Warn("session history unavailable", "session_id", req.SessionID, "error", err)
		}
	}

	state := s.detector.Detect(ctx, message, history)
	span.SetAttributes(
		attribute.String("journey.phase", string(state.Phase)),
		attribute.Bool("journey.should_create_ticket", state.ShouldCreateTicket),
	)

	reply := s.generateReply(ctx, profile, state, history, message)

	resp := ChatResponse{Success: true, Response: reply, SessionID: req.SessionID}
	if state.ShouldCreateTicket {
		if t := s.createAndDispatch(ctx, message, reply, profile); t != nil {
			resp.ServiceRequestID = t.ID
		}
	}

	s.appendHistory(ctx, req.SessionID, message, reply)
	s.metrics.ObserveChatLatency(time.Since(started).Seconds())
	return resp, nil
}

func (s *Service) generateReply(ctx context.Context, profile member.Profile, state journey.State, history []journey.Entry, message string) string {
	if s.completer == nil {
		return fallbackReply(state)
	}
	reply, err := s.completer.Complete(ctx, BuildSystemPrompt(profile, state), history, message)
	if err != nil || strings.TrimSpace(reply) == "" {
		s.logger.Error("model reply failed, using fallback", "error", err)
		return fallbackReply(state)
	}
	return reply
}

// createAndDispatch never propagates failures to the chat turn. A lost
// ticket is an operations problem, not the member's.
func (s *Service) createAndDispatch(ctx context.Context, message, reply string, profile member.Profile) *ticket.ServiceTicket {
	t := s.builder.CreateTicket(ctx, message, profile.ID)
	if t == nil {
		return nil
	}
	s.metrics.ObserveTicketCreated(t.BucketID, string(t.Urgency))

	if s.tickets != nil {
		if err := s.tickets.Save(ctx, t); err != nil {
			s.logger.Error("ticket save failed", "ticket_id", t.ID, "error", err)
		}
	}
	if s.notifier != nil {
		res := s.notifier.Dispatch(ctx, notify.Notification{
			Ticket:            t,
			OriginalMessage:   message,
			AssistantResponse: reply,
		})
		s.logger.Info("notification dispatched",
			"ticket_id", t.ID,
			"sent", res.Sent,
			"batched", res.Batched,
			"error", res.Err,
		)
	}
	return t
}

func (s *Service) appendHistory(ctx context.Context, sessionID, message, reply string) {
	if err := s.sessions.Append(ctx, sessionID, journey.Entry{Role: "user", Content: message}); err != nil {
		s.logger.Warn("session append failed", "session_id", sessionID, "error", err)
		return
	}
	if err := s.sessions.Append(ctx, sessionID, journey.Entry{Role: "assistant", Content: reply}); err != nil {
		s.logger.Warn("session append failed", "session_id", sessionID, "error", err)
	}
}
