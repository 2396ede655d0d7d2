// Package inference derives price and category labels for providers that
// return unstructured payloads. Used by the RapidAPI adapter, whose events
// frequently carry price only inside ticket URLs or free text.
package inference

import "time"

// RawEvent carries the fields the heuristics look at. Adapters fill in
// whatever their payload actually has; everything is optional.
type RawEvent struct {
	Name        string
	Description string
	Link        string

	IsFree   *bool
	Price    *PriceRange
	MinPrice *float64
	MaxPrice *float64

	TicketLinks []string
	Tags        []string

	VenueName    string
	VenueSubtype string

	// Start is the parsed event start; nil when the provider gave nothing
	// parseable. Time-gated category rules don't fire without it.
	Start *time.Time
}

// PriceRange is a structured price block as some payloads supply it.
type PriceRange struct {
	Min      float64
	Max      float64
	Currency string
}
