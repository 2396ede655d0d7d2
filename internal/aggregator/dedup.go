package aggregator

import (
	"strings"

	"eventscout/pkg/models"
)

// DedupKey identifies "the same event" across providers: exact match on
// lowercase-trimmed title, venue and date. Deliberately conservative — fuzzy
// matching risks merging genuinely distinct events that share a name.
func DedupKey(e models.Event) string {
	return strings.ToLower(strings.TrimSpace(e.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(e.Location)) + "|" +
		strings.ToLower(strings.TrimSpace(e.Date))
}

// Deduplicate drops events whose DedupKey was already seen. First occurrence
// wins, so providers earlier in the priority order keep their version. The
// operation is idempotent.
func Deduplicate(events []models.Event) []models.Event {
	if len(events) == 0 {
		return events
	}
	seen := make(map[string]struct{}, len(events))
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		key := DedupKey(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
