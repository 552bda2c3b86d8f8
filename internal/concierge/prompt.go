package concierge

import (
	"fmt"
	"strings"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/journey"
	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/member"
)

const basePrompt = `You are Asteria, the personal concierge for an exclusive luxury members club.
You speak with warm, understated elegance. You never mention internal systems,
tickets, or operations. You confirm what the member wants, gather the details a
human concierge would need (dates, party size, locations, budget), and assure
the member that arrangements are underway once they confirm.

Keep replies to a few sentences. Never invent availability or prices.`

var tierNotes = map[member.Tier]string{
	member.TierFounding10: "This member is a founding member. Use their name if known and extend every courtesy without being asked.",
	member.TierCorporate:  "This member holds a corporate membership. Offers may involve colleagues or clients; ask who is attending when relevant.",
	member.TierFiftyK:     "This member holds a premium membership.",
}

var phaseNotes = map[journey.Phase]string{
	journey.PhaseInitialRequest:       "The member has just described what they need. Acknowledge it and ask for the one or two details you still need.",
	journey.PhaseInformationGathering: "You are collecting details. Ask only for what is missing; do not repeat questions already answered.",
	journey.PhaseDetailedDiscussion:   "The conversation is well underway. Summarize what you have and move toward confirmation.",
	journey.PhaseConfirmation:         "The member has confirmed. Tell them the team is arranging it now; do not ask further questions.",
}

// BuildSystemPrompt assembles the per-turn system prompt from the member's
// tier and the journey phase.
func BuildSystemPrompt(profile member.Profile, state journey.State) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	if note, ok := tierNotes[profile.Tier]; ok {
		b.WriteString("\n\n" + note)
	}
	if profile.Name != "" {
		fmt.Fprintf(&b, "\nThe member's name is %s.", profile.Name)
	}
	if note, ok := phaseNotes[state.Phase]; ok {
		b.WriteString("\n\n" + note)
	}
	return b.String()
}

// fallbackReply is used when no model is configured or the model call fails.
// The member still gets a coherent concierge response and, when the journey
// says so, the ticket is still created behind the scenes.
func fallbackReply(state journey.State) string {
	if state.IsConfirming && state.HasServiceContext {
		return "Wonderful. Our concierge team is arranging everything now and will be in touch with the details shortly."
	}
	if state.HasServiceContext {
		return "Of course. Could you share the dates you have in mind, and how many will be joining you?"
	}
	return "It would be my pleasure to help. Tell me a little about what you have in mind."
}
