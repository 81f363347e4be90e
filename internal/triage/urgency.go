package triage

import (
	"strings"
)

// Urgency is the triage tier assigned to an email.
type Urgency string

const (
	Red    Urgency = "RED"
	Yellow Urgency = "YELLOW"
	Green  Urgency = "GREEN"
)

// ParseUrgency reads a classifier reply. Only the first line counts; it is
// trimmed and upper-cased. Anything outside the three tiers is reported
// with ok == false and Yellow.
func ParseUrgency(reply string) (u Urgency, ok bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	u = Urgency(strings.ToUpper(strings.TrimSpace(line)))

	switch u {
	case Red, Yellow, Green:
		return u, true
	default:
		return Yellow, false
	}
}

// Rank orders tiers from most to least urgent. Unknown values rank as Yellow.
func (u Urgency) Rank() int {
	switch u {
	case Red:
		return 0
	case Green:
		return 2
	default:
		return 1
	}
}

// Color is the lowercase presentation name of the tier.
func (u Urgency) Color() string {
	return strings.ToLower(string(u))
}
