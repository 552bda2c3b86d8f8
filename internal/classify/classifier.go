package classify

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/catalog"
	"github.com/mendez671/asteria-mobile-luxury-sub002/pkg/logging"
)

var tracer = otel.Tracer("asteria.internal.classify")

// Result is the outcome of scoring a message against the service catalog.
type Result struct {
	Bucket     catalog.Bucket
	Confidence int
	// Urgent is true when the winning bucket matched at least one priority keyword.
	Urgent bool
	// Matched is false when no keyword in any bucket matched. The Bucket field
	// then still carries the first configured bucket at confidence 0, which
	// downstream code relies on; Matched lets callers see the gap.
	Matched bool
}

// Classifier scores messages against the bucket catalog.
type Classifier struct {
	catalog *catalog.Catalog
	logger  *logging.Logger
}

// New creates a classifier over the given catalog.
func New(cat *catalog.Catalog, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{catalog: cat, logger: logger}
}

// Classify scores message against every bucket and returns the best match.
// Scoring: each matched keyword is worth 10, each matched priority keyword 5.
// The first bucket wins ties; a message matching nothing returns the first
// bucket at confidence 0 with Matched=false.
func (c *Classifier) Classify(ctx context.Context, message string) Result {
	_, span := tracer.Start(ctx, "classify.message")
	defer span.End()

	lower := strings.ToLower(message)
	buckets := c.catalog.Buckets()

	best := Result{Bucket: buckets[0]}
	for _, b := range buckets {
		kwMatches := countMatches(lower, b.Keywords)
		priMatches := countMatches(lower, b.PriorityKeywords)
		confidence := kwMatches*10 + priMatches*5
		if confidence > best.Confidence {
			best = Result{
				Bucket:     b,
				Confidence: confidence,
				Urgent:     priMatches > 0,
				Matched:    true,
			}
		}
	}

	span.SetAttributes(
		attribute.String("classify.bucket", best.Bucket.ID),
		attribute.Int("classify.confidence", best.Confidence),
		attribute.Bool("classify.urgent", best.Urgent),
	)

	if best.Matched {
		c.logger.Debug("message classified",
			"bucket", best.Bucket.ID,
			"confidence", best.Confidence,
			"urgent", best.Urgent,
		)
	} else {
		c.logger.Debug("message matched no bucket, using fallback",
			"bucket", best.Bucket.ID,
		)
	}

	return best
}

// countMatches counts how many keywords appear in the lower-cased message.
// Each keyword counts once regardless of how often it repeats.
func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
