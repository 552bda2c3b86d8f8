package ticket

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/extract"
)

// Urgency ranks how fast the concierge team must act.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
	// UrgencyCritical is reserved for operational escalations. The builder
	// never assigns it; the notification dispatcher treats it as an
	// unconditional bypass of throttling and batching.
	UrgencyCritical Urgency = "CRITICAL"
)

// Status is the ticket's position in the concierge operations workflow.
// Transitions only move forward; there is no documented reverse transition.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statusRank = map[Status]int{
	StatusPending:    0,
	StatusAssigned:   1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// ValidStatus reports whether s is a known workflow status.
func ValidStatus(s Status) bool {
	_, ok := statusRank[s]
	return ok
}

// ServiceTicket is the durable record of a member's service request.
// The ID is generated once at creation and never reassigned.
type ServiceTicket struct {
	ID          string          `json:"id"`
	MemberID    string          `json:"member_id"`
	BucketID    string          `json:"service_bucket"`
	ServiceName string          `json:"service_name"`
	Urgency     Urgency         `json:"urgency"`
	Details     extract.Details `json:"details"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewID generates a ticket id: "SR-" + 4 random decimal digits + the last 4
// digits of the current epoch millis. Not cryptographically unique; the
// collision probability is acceptably low for concierge volumes.
func NewID(now time.Time) string {
	return fmt.Sprintf("SR-%04d%04d", rand.Intn(10000), now.UnixMilli()%10000)
}
