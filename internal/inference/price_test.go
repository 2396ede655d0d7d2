package inference

import (
	"testing"
	"time"

	"eventscout/pkg/models"
)

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

func TestFreeFlagWins(t *testing.T) {
	raw := RawEvent{
		IsFree:      bptr(true),
		Price:       &PriceRange{Min: 10, Max: 20},
		Description: "tickets from $50",
	}
	if got := ExtractPrice(raw); got != "Free" {
		t.Fatalf("expected Free, got %q", got)
	}
}

func TestStructuredPriceBeatsText(t *testing.T) {
	raw := RawEvent{
		Price:       &PriceRange{Min: 10, Max: 10, Currency: "USD"},
		Description: "VIP packages available for $50",
	}
	if got := ExtractPrice(raw); got != "$10.00" {
		t.Fatalf("expected structured $10.00 to win over text $50, got %q", got)
	}
}

func TestStructuredRange(t *testing.T) {
	raw := RawEvent{Price: &PriceRange{Min: 10, Max: 20}}
	if got := ExtractPrice(raw); got != "$10.00 - $20.00" {
		t.Fatalf("got %q", got)
	}
}

func TestStructuredZeroIsFree(t *testing.T) {
	raw := RawEvent{Price: &PriceRange{}}
	if got := ExtractPrice(raw); got != "Free" {
		t.Fatalf("got %q", got)
	}
}

func TestFlatMinMaxFields(t *testing.T) {
	cases := []struct {
		name string
		raw  RawEvent
		want string
	}{
		{"both", RawEvent{MinPrice: fptr(15), MaxPrice: fptr(45)}, "$15.00 - $45.00"},
		{"min only", RawEvent{MinPrice: fptr(15)}, "$15.00"},
		{"max only", RawEvent{MaxPrice: fptr(45)}, "$45.00"},
		{"both zero", RawEvent{MinPrice: fptr(0), MaxPrice: fptr(0)}, "Free"},
	}
	for _, tc := range cases {
		if got := ExtractPrice(tc.raw); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestURLPatterns(t *testing.T) {
	cases := []struct {
		name string
		link string
		want string
	}{
		{"eventbrite query", "https://www.eventbrite.com/e/show-tickets-123?price=25.50", "$25.50"},
		{"seetickets path", "https://www.seetickets.us/event/show/price/35", "$35.00"},
		{"vividseats query", "https://www.vividseats.com/concerts/show?minPrice=42", "$42.00"},
		{"generic cost param", "https://tickets.example.com/buy?cost=18", "$18.00"},
		{"dollar in url", "https://tickets.example.com/buy/$20-entry", "$20.00"},
	}
	for _, tc := range cases {
		raw := RawEvent{TicketLinks: []string{tc.link}}
		if got := ExtractPrice(raw); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestTextScan(t *testing.T) {
	raw := RawEvent{
		Name:        "Warehouse Rave",
		Description: "Early bird $20, door $35",
	}
	if got := ExtractPrice(raw); got != "$20.00 - $35.00" {
		t.Fatalf("expected min-max from text, got %q", got)
	}
}

func TestTextFreeIndicator(t *testing.T) {
	raw := RawEvent{Description: "Free admission all night"}
	if got := ExtractPrice(raw); got != "Free" {
		t.Fatalf("got %q", got)
	}
}

func TestCategoryEstimateArenaConcert(t *testing.T) {
	raw := RawEvent{
		Name:         "Summer Tour 2026",
		Description:  "The band performing live",
		VenueSubtype: "arena",
	}
	if got := ExtractPrice(raw); got != "$45.00 - $150.00" {
		t.Fatalf("expected arena concert estimate, got %q", got)
	}
}

func TestCategoryEstimateSmallConcert(t *testing.T) {
	raw := RawEvent{Name: "Jazz Quartet Concert", VenueName: "Blue Room"}
	if got := ExtractPrice(raw); got != "$25.00 - $85.00" {
		t.Fatalf("got %q", got)
	}
}

func TestFinalFallbackTBA(t *testing.T) {
	raw := RawEvent{Name: "Community Gathering", Description: "Bring a friend"}
	if got := ExtractPrice(raw); got != models.PriceTBA {
		t.Fatalf("expected %q, got %q", models.PriceTBA, got)
	}
}

func TestURLBeatsTextScan(t *testing.T) {
	raw := RawEvent{
		Description: "from $99",
		TicketLinks: []string{"https://www.eventbrite.com/e/x?price=12"},
	}
	if got := ExtractPrice(raw); got != "$12.00" {
		t.Fatalf("expected URL-derived price, got %q", got)
	}
}

func TestCategorizeOrdering(t *testing.T) {
	evening := time.Date(2026, 8, 1, 22, 0, 0, 0, time.UTC)

	// "club" and "concert" both match; Concerts rule runs first.
	raw := RawEvent{
		Name:  "Concert at the club",
		Start: &evening,
	}
	if got := Categorize(raw); got != CategoryConcerts {
		t.Fatalf("expected Concerts to win, got %q", got)
	}
}

func TestCategorizeClubTimeGate(t *testing.T) {
	evening := time.Date(2026, 8, 1, 23, 0, 0, 0, time.UTC)
	noon := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	raw := RawEvent{Name: "Nightclub takeover", Start: &evening}
	if got := Categorize(raw); got != CategoryClubEvents {
		t.Fatalf("expected Club Events at 23:00, got %q", got)
	}

	raw.Start = &noon
	if got := Categorize(raw); got == CategoryClubEvents {
		t.Fatal("club rule must not fire at noon")
	}

	raw.Start = nil
	if got := Categorize(raw); got == CategoryClubEvents {
		t.Fatal("club rule must not fire without a start time")
	}
}

func TestCategorizeDayParty(t *testing.T) {
	noon := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
	raw := RawEvent{Name: "Rooftop pool party", Start: &noon}
	if got := Categorize(raw); got != CategoryDayParties {
		t.Fatalf("expected Day Parties, got %q", got)
	}
}

func TestCategorizeDefault(t *testing.T) {
	raw := RawEvent{Name: "Book reading"}
	if got := Categorize(raw); got != CategoryGeneral {
		t.Fatalf("expected General Events, got %q", got)
	}
}
