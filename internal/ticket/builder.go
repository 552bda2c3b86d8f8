package ticket

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/classify"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/extract"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var builderTracer = otel.Tracer("asteria.internal.ticket.builder")

// sameDayTerms force HIGH urgency when they show up in the extracted dates,
// regardless of what the classifier decided. "tomorrow" deliberately does not.
var sameDayTerms = []string{"today", "tonight", "asap"}

// Builder assembles service tickets from raw messages.
type Builder struct {
	classifier *classify.Classifier
	logger     *logging.Logger
	now        func() time.Time
}

// NewBuilder creates a ticket builder over the given classifier.
func NewBuilder(classifier *classify.Classifier, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket classifies the message, extracts details for the winning
// bucket, and assembles a pending ticket. Persistence and notification are
// the caller's responsibility.
func (b *Builder) CreateTicket(ctx context.Context, message, memberID string) *ServiceTicket {
	ctx, span := builderTracer.Start(ctx, "ticket.create")
	defer span.End()

	result := b.classifier.Classify(ctx, message)
	details := extract.Extract(message, result.Bucket)

	now := b.now().UTC()
	t := &ServiceTicket{
		ID:          NewID(now),
		MemberID:    memberID,
		BucketID:    result.Bucket.ID,
		ServiceName: result.Bucket.Name,
		Urgency:     determineUrgency(result, details),
		Details:     details,
		Status:      StatusPending,
		CreatedAt:   now,
	}

	span.SetAttributes(
		attribute.String("ticket.id", t.ID),
		attribute.String("ticket.bucket", t.BucketID),
		attribute.String("ticket.urgency", string(t.Urgency)),
	)
	b.logger.Info("service ticket created",
		"ticket_id", t.ID,
		"member_id", memberID,
		"bucket", t.BucketID,
		"urgency", t.Urgency,
		"classified", result.Matched,
	)

	return t
}

func determineUrgency(result classify.Result, details extract.Details) Urgency {
	urgency := UrgencyLow
	switch {
	case result.Urgent:
		urgency = UrgencyHigh
	case result.Bucket.ID == "transportation" || result.Bucket.ID == "events":
		urgency = UrgencyMedium
	}

	dates := strings.ToLower(details.Dates)
	for _, term := range sameDayTerms {
		if strings.Contains(dates, term) {
			return UrgencyHigh
		}
	}
	return urgency
}
