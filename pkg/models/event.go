package models

// Event is the normalized, provider-agnostic form of an event.
//
// Every provider adapter maps its own response format into this structure
// first; dedup, ranking and the API layer only ever see Events.
type Event struct {
	// ID is prefixed by the source ("tm_", "eb_", "phq_", "ra_") so IDs from
	// different providers can never collide before dedup runs.
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`

	// Date and Time are display strings derived from the provider's start
	// timestamp; "TBA" when the provider gives nothing usable.
	Date string `json:"date"`
	Time string `json:"time"`

	// Location is the venue name, Address the formatted street address.
	Location string `json:"location"`
	Address  string `json:"address"`

	// Price is always a display string ("Free", "$10.00", "$10.00 - $20.00",
	// "Price TBA"), never a raw number.
	Price string `json:"price"`

	Image     string    `json:"image,omitempty"`
	Organizer Organizer `json:"organizer"`

	// Attendees is nil when the provider doesn't report attendance. We never
	// invent a number here.
	Attendees *int `json:"attendees,omitempty"`

	Coordinates *LatLng      `json:"coordinates,omitempty"`
	TicketLinks []TicketLink `json:"ticket_links,omitempty"`

	// IsFavorite is client-local state, never sourced from providers.
	IsFavorite bool `json:"is_favorite"`
}

type Organizer struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TicketLink struct {
	Source string `json:"source"`
	Link   string `json:"link"`
}

// Placeholder values used when a provider omits a field. Downstream rendering
// never needs a null check.
const (
	DateTBA    = "TBA"
	TimeTBA    = "TBA"
	VenueTBD   = "TBD"
	AddressTBA = "Address TBA"
	PriceTBA   = "Price TBA"
)
