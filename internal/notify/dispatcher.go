package notify

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/observability/metrics"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var dispatcherTracer = otel.Tracer("asteria.internal.notify.dispatcher")

// Notification carries a ticket and its conversational context through
// formatting and delivery.
type Notification struct {
	Ticket            *ticket.ServiceTicket
	OriginalMessage   string
	AssistantResponse string
}

// Result reports what happened to one dispatch attempt. Dispatch never
// panics and never returns an error value; delivery failures surface here
// as Sent=false with Err set, so the chat turn that triggered the alert is
// unaffected.
type Result struct {
	Sent       bool   `json:"sent"`
	Throttled  bool   `json:"throttled"`
	Batched    bool   `json:"batched"`
	QueueDepth int    `json:"queue_depth,omitempty"`
	Err        string `json:"error,omitempty"`
}

// Dispatcher fans a ticket out to the configured channels, subject to
// per-scope throttling. Channels may be nil; a dispatcher with no channels
// still throttles and reports, it just has nowhere to deliver.
type Dispatcher struct {
	chatOps  ChatOpsChannel
	sms      SMSChannel
	smsTo    []string
	throttle *Throttle
	metrics  *metrics.PipelineMetrics
	logger   *logging.Logger
}

// DispatcherOptions configures throttle bounds and delivery targets.
type DispatcherOptions struct {
	RatePerMinute int
	BatchWindow   time.Duration
	BatchMax      int
	SMSTo         []string
}

// NewDispatcher wires the channels behind a shared throttle. Batches
// released by the throttle are delivered on the timer goroutine with a
// background context, since the originating request is long gone.
func NewDispatcher(chatOps ChatOpsChannel, sms SMSChannel, opts DispatcherOptions, m *metrics.PipelineMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		chatOps: chatOps,
		sms:     sms,
		smsTo:   opts.SMSTo,
		metrics: m,
		logger:  logger,
	}
	d.throttle = NewThrottle(opts.RatePerMinute, opts.BatchWindow, opts.BatchMax, d.deliverBatch)
	return d
}

// Dispatch sends the notification for a freshly created ticket. CRITICAL
// urgency bypasses the throttle entirely and is neither counted against the
// window nor ever batched.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) Result {
	if d == nil {
		return Result{Err: "dispatcher disabled"}
	}
	if n.Ticket == nil {
		return Result{Err: "no ticket"}
	}

	ctx, span := dispatcherTracer.Start(ctx, "notify.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("ticket.id", n.Ticket.ID),
		attribute.String("ticket.urgency", string(n.Ticket.Urgency)),
	)

	if n.Ticket.Urgency == ticket.UrgencyCritical {
		return d.deliver(ctx, n)
	}

	scope := n.Ticket.BucketID + ":" + n.Ticket.MemberID
	decision, depth := d.throttle.Admit(scope, n)
	if decision == DecisionBatch {
		d.metrics.ObserveThrottled()
		d.logger.Info("notification batched",
			"ticket_id", n.Ticket.ID,
			"scope", scope,
			"queue_depth", depth,
		)
		return Result{Throttled: true, Batched: true, QueueDepth: depth}
	}

	return d.deliver(ctx, n)
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) Result {
	var errs []error

	if d.chatOps != nil {
		if err := d.chatOps.PostTicket(ctx, n); err != nil {
			errs = append(errs, err)
			d.metrics.ObserveNotification("chatops", "error")
			d.logger.Error("chat-ops notification failed", "ticket_id", n.Ticket.ID, "error", err)
		} else {
			d.metrics.ObserveNotification("chatops", "ok")
		}
	}

	if d.sms != nil && len(d.smsTo) > 0 {
		body := FormatShort(n)
		for _, to := range d.smsTo {
			if err := d.sms.SendSMS(ctx, to, body); err != nil {
				errs = append(errs, err)
				d.metrics.ObserveNotification("sms", "error")
				d.logger.Error("sms notification failed", "ticket_id", n.Ticket.ID, "to", to, "error", err)
			} else {
				d.metrics.ObserveNotification("sms", "ok")
			}
		}
	}

	if d.chatOps == nil && d.sms == nil {
		d.logger.Warn("no notification channels configured", "ticket_id", n.Ticket.ID)
		return Result{Err: "no channels configured"}
	}
	if len(errs) > 0 {
		return Result{Err: errors.Join(errs...).Error()}
	}
	return Result{Sent: true}
}

func (d *Dispatcher) deliverBatch(scope string, items []Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if d.chatOps != nil {
		if err := d.chatOps.PostBatch(ctx, scope, items); err != nil {
			d.metrics.ObserveNotification("chatops", "error")
			d.logger.Error("batched notification failed", "scope", scope, "count", len(items), "error", err)
			return
		}
		d.metrics.ObserveNotification("chatops", "ok")
	}
	d.logger.Info("batched notifications delivered", "scope", scope, "count", len(items))
}
