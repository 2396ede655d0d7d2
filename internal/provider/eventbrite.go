package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"eventscout/pkg/models"
)

const eventbriteBase = "https://www.eventbriteapi.com/v3"

// Eventbrite adapts the v3 search API. Quirks: geo filter is
// location.latitude/longitude + location.within in kilometers, pages are
// 1-based, auth is a Bearer token.
type Eventbrite struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewEventbrite(token string) *Eventbrite {
	return &Eventbrite{
		BaseURL: eventbriteBase,
		Token:   token,
		Client:  defaultClient(),
	}
}

func (e *Eventbrite) Name() string  { return NameEventbrite }
func (e *Eventbrite) Enabled() bool { return e.Token != "" }

type ebResponse struct {
	Events     []ebEvent `json:"events"`
	Pagination struct {
		ObjectCount int `json:"object_count"`
		PageCount   int `json:"page_count"`
	} `json:"pagination"`
}

type ebEvent struct {
	ID   string `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	URL   string `json:"url"`
	Start struct {
		Local string `json:"local"`
		UTC   string `json:"utc"`
	} `json:"start"`
	IsFree bool `json:"is_free"`
	Logo   struct {
		URL string `json:"url"`
	} `json:"logo"`
	Category struct {
		Name string `json:"name"`
	} `json:"category"`
	Venue struct {
		Name    string `json:"name"`
		Address struct {
			LocalizedAddressDisplay string `json:"localized_address_display"`
		} `json:"address"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"venue"`
	Organizer struct {
		Name string `json:"name"`
		Logo struct {
			URL string `json:"url"`
		} `json:"logo"`
	} `json:"organizer"`
	TicketAvailability struct {
		MinimumTicketPrice *ebPrice `json:"minimum_ticket_price"`
		MaximumTicketPrice *ebPrice `json:"maximum_ticket_price"`
	} `json:"ticket_availability"`
}

type ebPrice struct {
	MajorValue string `json:"major_value"`
	Currency   string `json:"currency"`
}

const milesToKm = 1.60934

func (e *Eventbrite) Search(ctx context.Context, req models.SearchRequest) ([]models.Event, error) {
	u, err := url.Parse(e.BaseURL + "/events/search/")
	if err != nil {
		return nil, fmt.Errorf("eventbrite: parse url: %w", err)
	}

	q := u.Query()
	if req.Keyword != "" {
		q.Set("q", req.Keyword)
	}
	if req.Coordinates != nil {
		q.Set("location.latitude", fmt.Sprintf("%f", req.Coordinates.Lat))
		q.Set("location.longitude", fmt.Sprintf("%f", req.Coordinates.Lng))
		km := int(float64(req.Radius)*milesToKm + 0.5)
		q.Set("location.within", fmt.Sprintf("%dkm", km))
	} else if req.Location != "" {
		q.Set("location.address", req.Location)
	}
	if req.StartDate != "" {
		q.Set("start_date.range_start", req.StartDate)
	}
	if req.EndDate != "" {
		q.Set("start_date.range_end", req.EndDate)
	}
	q.Set("page", strconv.Itoa(req.Page+1)) // Eventbrite pages are 1-based
	q.Set("expand", "venue,organizer,ticket_availability,category")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("eventbrite: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.Token)

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("eventbrite: request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("eventbrite: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(NameEventbrite, resp, body)
	}

	var er ebResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("eventbrite: decode: %w", err)
	}

	out := make([]models.Event, 0, len(er.Events))
	for _, raw := range er.Events {
		if raw.ID == "" || raw.Name.Text == "" {
			continue
		}
		out = append(out, mapEventbriteEvent(raw))
	}
	return out, nil
}

// mapEventbriteEvent is the pure v3-payload-to-canonical transform.
func mapEventbriteEvent(raw ebEvent) models.Event {
	ev := models.Event{
		ID:          "eb_" + raw.ID,
		Title:       raw.Name.Text,
		Description: raw.Description.Text,
		Category:    orDefault(raw.Category.Name, "General Events"),
		Date:        models.DateTBA,
		Time:        models.TimeTBA,
		Location:    orDefault(raw.Venue.Name, models.VenueTBD),
		Address:     orDefault(raw.Venue.Address.LocalizedAddressDisplay, models.AddressTBA),
		Price:       models.PriceTBA,
		Image:       raw.Logo.URL,
		Organizer: models.Organizer{
			Name:   orDefault(raw.Organizer.Name, "Eventbrite"),
			Avatar: raw.Organizer.Logo.URL,
		},
	}

	if start, ok := parseEBStart(raw); ok {
		ev.Date = displayDate(start)
		ev.Time = displayTime(start)
	}

	lat, errLat := strconv.ParseFloat(raw.Venue.Latitude, 64)
	lng, errLng := strconv.ParseFloat(raw.Venue.Longitude, 64)
	if errLat == nil && errLng == nil && (lat != 0 || lng != 0) {
		ev.Coordinates = &models.LatLng{Lat: lat, Lng: lng}
	}

	switch {
	case raw.IsFree:
		ev.Price = "Free"
	default:
		min := parseEBMajor(raw.TicketAvailability.MinimumTicketPrice)
		max := parseEBMajor(raw.TicketAvailability.MaximumTicketPrice)
		if min > 0 || max > 0 {
			ev.Price = displayPrice(min, max)
		}
	}

	if raw.URL != "" {
		ev.TicketLinks = []models.TicketLink{{Source: "Eventbrite", Link: raw.URL}}
	}
	return ev
}

func parseEBStart(raw ebEvent) (time.Time, bool) {
	if raw.Start.Local != "" {
		if t, err := time.Parse("2006-01-02T15:04:05", raw.Start.Local); err == nil {
			return t, true
		}
	}
	if raw.Start.UTC != "" {
		if t, err := time.Parse(time.RFC3339, raw.Start.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseEBMajor(p *ebPrice) float64 {
	if p == nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.MajorValue, 64)
	if err != nil {
		return 0
	}
	return v
}
