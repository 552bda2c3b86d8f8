package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/catalog"
)

// Details is the key/value bag the extractor pulls from a raw message.
// Absent fields stay at their zero value; extraction never fails.
type Details struct {
	Dates           string            `json:"dates,omitempty"`
	Time            string            `json:"time,omitempty"`
	Guests          int               `json:"guests,omitempty"`
	Location        string            `json:"location,omitempty"`
	Destination     string            `json:"destination,omitempty"`
	Budget          string            `json:"budget,omitempty"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

type field int

const (
	fieldDates field = iota
	fieldTime
	fieldGuests
	fieldLocation
	fieldDestination
	fieldBudget
)

// rule binds a pattern to a target field. Rules are evaluated in order in a
// single pass; overwrite controls whether a later rule replaces an earlier
// hit on the same field. Location/destination rules overwrite so the
// last-pattern-wins interaction between "from X", "to X" and "in/at X" is
// explicit rather than an accident of statement order.
type rule struct {
	re        *regexp.Regexp
	field     field
	overwrite bool
}

var rules = []rule{
	// Dates: relative terms first, then weekday/relative-week phrases,
	// numeric MM/DD[/YY], and month-name-plus-day. First match sticks.
	{re: regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|asap)\b`), field: fieldDates},
	{re: regexp.MustCompile(`(?i)\b((?:this|next)\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|weekend|week|month))\b`), field: fieldDates},
	{re: regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\b`), field: fieldDates},
	{re: regexp.MustCompile(`(?i)\b((?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?)\b`), field: fieldDates},

	// Time.
	{re: regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s*(?:am|pm))\b`), field: fieldTime},
	{re: regexp.MustCompile(`(?i)\b(noon|midnight)\b`), field: fieldTime},

	// Guest count. No bounds validation: "for 999999" yields that integer.
	{re: regexp.MustCompile(`(?i)\b(\d+)\s*(?:people|persons?|guests?|passengers?|pax)\b`), field: fieldGuests},
	{re: regexp.MustCompile(`(?i)\bfor\s+(\d+)\b`), field: fieldGuests},
	{re: regexp.MustCompile(`(?i)\bparty\s+of\s+(\d+)\b`), field: fieldGuests},

	// Locations. Captures run to end of sentence and are trimmed at stop
	// tokens afterwards, since RE2 has no lookahead.
	{re: regexp.MustCompile(`(?i)\bfrom\s+([a-z][a-z0-9 .,'-]*)`), field: fieldLocation, overwrite: true},
	{re: regexp.MustCompile(`(?i)\bto\s+([a-z][a-z0-9 .,'-]*)`), field: fieldDestination, overwrite: true},
	{re: regexp.MustCompile(`(?i)\b(?:in|at)\s+([a-z][a-z0-9 .,'-]*)`), field: fieldLocation, overwrite: true},

	// Budget.
	{re: regexp.MustCompile(`(?i)(\$[0-9][0-9,]*(?:\.\d{2})?(?:\s*(?:k|thousand|million|m))?)`), field: fieldBudget},
	{re: regexp.MustCompile(`(?i)\b(no budget|unlimited budget|price is no object|money is no object|sky'?s the limit)\b`), field: fieldBudget},
	{re: regexp.MustCompile(`(?i)\b(budget\s+(?:of|around|up to)\s+\$?[0-9][0-9,]*)\b`), field: fieldBudget},
}

// specialRequestPatterns accumulate across all hits, deduplicated.
var specialRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(catering|private chef|michelin)\b`),
	regexp.MustCompile(`(?i)\b(champagne|wine pairing|sommelier)\b`),
	regexp.MustCompile(`(?i)\b(flowers|roses|decorations|balloons)\b`),
	regexp.MustCompile(`(?i)\b(dj|live music|band)\b`),
	regexp.MustCompile(`(?i)\b(photographer|photography|videographer)\b`),
	regexp.MustCompile(`(?i)\b(security|bodyguard)\b`),
	regexp.MustCompile(`(?i)\b(cake|fireworks|surprise)\b`),
}

// locationStopWords end a captured place name. The capture greedily grabs the
// rest of the clause; the first stop word (or punctuation) cuts it back down.
var locationStopWords = []string{
	" to ", " from ", " for ", " on ", " at ", " in ", " with ", " and ",
	" tomorrow", " today", " tonight", " next ", " this ",
}

// Extract pulls structured details from a raw message for the given bucket.
// The bucket's id is recorded so bucket-specific consumers can key off it.
func Extract(message string, bucket catalog.Bucket) Details {
	d := Details{}
	set := make(map[field]bool)

	for _, r := range rules {
		if set[r.field] && !r.overwrite {
			continue
		}
		m := r.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		switch r.field {
		case fieldDates:
			d.Dates = value
		case fieldTime:
			d.Time = value
		case fieldGuests:
			if n, err := strconv.Atoi(value); err == nil {
				d.Guests = n
			} else {
				continue
			}
		case fieldLocation:
			d.Location = trimPlace(value)
		case fieldDestination:
			d.Destination = trimPlace(value)
		case fieldBudget:
			d.Budget = value
		}
		set[r.field] = true
	}

	d.SpecialRequests = extractSpecialRequests(message)

	if bucket.ID != "" {
		d.Extra = map[string]string{"bucket": bucket.ID}
	}

	return d
}

func extractSpecialRequests(message string) string {
	seen := make(map[string]bool)
	var hits []string
	for _, re := range specialRequestPatterns {
		for _, m := range re.FindAllStringSubmatch(message, -1) {
			v := strings.ToLower(strings.TrimSpace(m[1]))
			if v != "" && !seen[v] {
				seen[v] = true
				hits = append(hits, v)
			}
		}
	}
	return strings.Join(hits, ", ")
}

// trimPlace cuts a greedy place capture back to the place name itself.
func trimPlace(s string) string {
	lower := strings.ToLower(s)
	cut := len(s)
	for _, stop := range locationStopWords {
		if idx := strings.Index(lower, stop); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	s = s[:cut]
	if idx := strings.IndexAny(s, ",!?;"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
