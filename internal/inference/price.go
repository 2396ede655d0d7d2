package inference

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"eventscout/pkg/models"
)

// Ticket-platform URL patterns, tried against every ticket link. Each
// platform encodes price differently.
var (
	eventbriteURLPrice = regexp.MustCompile(`[?&](?:price|ticket_price)=(\d+(?:\.\d{1,2})?)`)
	seeTicketsURLPrice = regexp.MustCompile(`/price/(\d+(?:\.\d{1,2})?)`)
	vividSeatsURLPrice = regexp.MustCompile(`[?&](?:price|minPrice)=(\d+(?:\.\d{1,2})?)`)
	genericURLPrice    = regexp.MustCompile(`[?&](?:price|cost)=(\d+(?:\.\d{1,2})?)`)
	dollarAmount       = regexp.MustCompile(`\$(\d+(?:\.\d{1,2})?)`)
)

var freeIndicators = []string{
	"free admission", "free entry", "free event", "free to attend",
	"no cover", "free rsvp",
}

// ExtractPrice derives a display price for an event, trying sources in strict
// precedence order: explicit free flag, structured price object, flat
// min/max fields, ticket-URL patterns, free-text scan, category-based
// estimate, and finally "Price TBA".
func ExtractPrice(raw RawEvent) string {
	// 1. explicit free flag
	if raw.IsFree != nil && *raw.IsFree {
		return "Free"
	}

	// 2. structured price object
	if p := raw.Price; p != nil {
		if p.Min == 0 && p.Max == 0 {
			return "Free"
		}
		return formatRange(p.Min, p.Max)
	}

	// 3. flat min/max fields
	if raw.MinPrice != nil || raw.MaxPrice != nil {
		min, max := 0.0, 0.0
		if raw.MinPrice != nil {
			min = *raw.MinPrice
		}
		if raw.MaxPrice != nil {
			max = *raw.MaxPrice
		}
		if min == 0 && max == 0 {
			return "Free"
		}
		return formatRange(min, max)
	}

	// 4. price embedded in ticket-platform URLs
	if price, ok := priceFromURLs(raw.TicketLinks); ok {
		return price
	}

	// 5. free-text scan of title + description + link
	if price, ok := priceFromText(raw.Name + " " + raw.Description + " " + raw.Link); ok {
		return price
	}

	// 6. category/venue based estimate
	if price, ok := estimateByCategory(raw); ok {
		return price
	}

	// 7. give up honestly
	return models.PriceTBA
}

func priceFromURLs(links []string) (string, bool) {
	for _, link := range links {
		lower := strings.ToLower(link)

		var re *regexp.Regexp
		switch {
		case strings.Contains(lower, "eventbrite."):
			re = eventbriteURLPrice
		case strings.Contains(lower, "seetickets."):
			re = seeTicketsURLPrice
		case strings.Contains(lower, "vividseats."):
			re = vividSeatsURLPrice
		default:
			re = genericURLPrice
		}

		if m := re.FindStringSubmatch(link); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				return formatRange(v, v), true
			}
		}
		if m := dollarAmount.FindStringSubmatch(link); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				return formatRange(v, v), true
			}
		}
	}
	return "", false
}

func priceFromText(text string) (string, bool) {
	lower := strings.ToLower(text)

	for _, ind := range freeIndicators {
		if strings.Contains(lower, ind) {
			return "Free", true
		}
	}

	// collect every $NN mention and report min-max
	matches := dollarAmount.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	min, max := 0.0, 0.0
	for i, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if i == 0 || v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return "", false
	}
	return formatRange(min, max), true
}

// estimateByCategory produces a plausible range for well-known category and
// venue combinations. Anything we can't estimate falls through to TBA.
func estimateByCategory(raw RawEvent) (string, bool) {
	category := Categorize(raw)
	venue := strings.ToLower(raw.VenueSubtype + " " + raw.VenueName)
	bigVenue := strings.Contains(venue, "arena") || strings.Contains(venue, "stadium") ||
		strings.Contains(venue, "amphitheat")

	switch category {
	case CategoryConcerts:
		if bigVenue {
			return "$45.00 - $150.00", true
		}
		return "$25.00 - $85.00", true
	case CategoryClubEvents:
		return "$10.00 - $30.00", true
	case CategoryDayParties:
		return "$15.00 - $40.00", true
	case CategoryParties:
		return "$10.00 - $25.00", true
	}
	return "", false
}

func formatRange(min, max float64) string {
	if max <= min || max == 0 {
		return fmt.Sprintf("$%.2f", min)
	}
	if min == 0 {
		return fmt.Sprintf("$%.2f", max)
	}
	return fmt.Sprintf("$%.2f - $%.2f", min, max)
}
