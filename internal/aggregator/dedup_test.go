package aggregator

import (
	"testing"

	"eventscout/pkg/models"
)

func TestDeduplicateFirstWins(t *testing.T) {
	in := []models.Event{
		{ID: "tm_1", Title: "Jazz Night", Location: "Blue Note", Date: "Mar 1, 2026"},
		{ID: "eb_1", Title: "jazz night ", Location: " BLUE NOTE", Date: "Mar 1, 2026"},
		{ID: "phq_1", Title: "Jazz Night", Location: "Blue Note", Date: "Mar 2, 2026"},
	}

	out := Deduplicate(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 events, got %d", len(out))
	}
	if out[0].ID != "tm_1" {
		t.Fatalf("first occurrence must win, got %s", out[0].ID)
	}
	if out[1].ID != "phq_1" {
		t.Fatalf("different date is a different event, got %s", out[1].ID)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []models.Event{
		{ID: "a", Title: "Show", Location: "Hall", Date: "TBA"},
		{ID: "b", Title: "show", Location: "hall", Date: "TBA"},
		{ID: "c", Title: "Other", Location: "Hall", Date: "TBA"},
	}

	once := Deduplicate(in)
	twice := Deduplicate(once)
	if len(once) != len(twice) {
		t.Fatalf("dedup must be idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("order changed on second pass at %d: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestDeduplicateEmpty(t *testing.T) {
	if out := Deduplicate(nil); len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}

func TestDedupKeyNormalizesCaseAndSpace(t *testing.T) {
	a := models.Event{Title: "  Jazz Night", Location: "Blue Note ", Date: "Mar 1, 2026"}
	b := models.Event{Title: "JAZZ NIGHT", Location: "blue note", Date: "mar 1, 2026"}
	if DedupKey(a) != DedupKey(b) {
		t.Fatalf("keys differ: %q vs %q", DedupKey(a), DedupKey(b))
	}
}
