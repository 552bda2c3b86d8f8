package notify

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/ticket"
)

func urgencyEmoji(u ticket.Urgency) string {
	switch u {
	case ticket.UrgencyCritical:
		return "🚨"
	case ticket.UrgencyHigh:
		return "🔴"
	case ticket.UrgencyMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// FormatChatOps renders the full concierge alert for the chat-ops channel:
// header, member and service context, extracted details, the member's own
// words, and an actionable summary line for whoever picks it up.
func FormatChatOps(n Notification) (string, []slack.Block) {
	t := n.Ticket
	text := fmt.Sprintf("%s New service request %s (%s, %s)",
		urgencyEmoji(t.Urgency), t.ID, t.ServiceName, t.Urgency)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Member:*\n%s", t.MemberID), false, false),
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Service:*\n%s", t.ServiceName), false, false),
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Urgency:*\n%s %s", urgencyEmoji(t.Urgency), t.Urgency), false, false),
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Status:*\n%s", t.Status), false, false),
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("New Service Request %s", t.ID), true, false)),
		slack.NewSectionBlock(nil, fields, nil),
	}

	if details := detailLines(t); details != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"*Details:*\n"+details, false, false), nil, nil))
	}
	if n.OriginalMessage != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Member said:*\n> %s", n.OriginalMessage), false, false), nil, nil))
	}
	if n.AssistantResponse != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Concierge replied:*\n> %s", truncate(n.AssistantResponse, 300)), false, false), nil, nil))
	}
	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Actionable: confirm availability and respond to the member. Created %s.",
					t.CreatedAt.Format("Jan 2 15:04 MST")), false, false)),
	)
	return text, blocks
}

// FormatBatch renders a combined alert for notifications that were held back
// by the throttle and released together.
func FormatBatch(scope string, items []Notification) (string, []slack.Block) {
	text := fmt.Sprintf("📦 %d queued service requests (%s)", len(items), scope)

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("%d Queued Service Requests", len(items)), true, false)),
	}
	var lines []string
	for _, n := range items {
		t := n.Ticket
		lines = append(lines, fmt.Sprintf("%s *%s* %s — %s",
			urgencyEmoji(t.Urgency), t.ID, t.ServiceName, truncate(n.OriginalMessage, 120)))
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(lines, "\n"), false, false), nil, nil))
	return text, blocks
}

// FormatShort renders the compact SMS body for the concierge on-call phones.
func FormatShort(n Notification) string {
	t := n.Ticket
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s: %s", urgencyEmoji(t.Urgency), t.Urgency, t.ID, t.ServiceName)
	if t.MemberID != "" && t.MemberID != "anonymous" {
		fmt.Fprintf(&b, " for %s", t.MemberID)
	}
	if route := routeSummary(t); route != "" {
		b.WriteString(". " + route)
	}
	if t.Details.Dates != "" {
		b.WriteString(" " + t.Details.Dates)
	}
	if t.Details.Guests > 0 {
		fmt.Fprintf(&b, " (%d guests)", t.Details.Guests)
	}
	return truncate(b.String(), 320)
}

func routeSummary(t *ticket.ServiceTicket) string {
	switch {
	case t.Details.Location != "" && t.Details.Destination != "":
		return t.Details.Location + " to " + t.Details.Destination
	case t.Details.Destination != "":
		return "to " + t.Details.Destination
	case t.Details.Location != "":
		return t.Details.Location
	}
	return ""
}

func detailLines(t *ticket.ServiceTicket) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("• %s: %s", label, value))
		}
	}
	add("Dates", t.Details.Dates)
	add("Time", t.Details.Time)
	if t.Details.Guests > 0 {
		add("Guests", fmt.Sprintf("%d", t.Details.Guests))
	}
	add("From", t.Details.Location)
	add("To", t.Details.Destination)
	add("Budget", t.Details.Budget)
	add("Special requests", t.Details.SpecialRequests)
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
