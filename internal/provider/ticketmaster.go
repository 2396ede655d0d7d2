package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventscout/pkg/models"
)

const ticketmasterBase = "https://app.ticketmaster.com/discovery/v2"

// Ticketmaster adapts the Discovery v2 API. Quirks: geo filter is
// "latlong" + radius in miles, pages are 0-based, categories map to
// classificationName.
type Ticketmaster struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewTicketmaster(apiKey string) *Ticketmaster {
	return &Ticketmaster{
		BaseURL: ticketmasterBase,
		APIKey:  apiKey,
		Client:  defaultClient(),
	}
}

func (t *Ticketmaster) Name() string  { return NameTicketmaster }
func (t *Ticketmaster) Enabled() bool { return t.APIKey != "" }

// tmResponse mirrors the slice of the Discovery payload we consume.
type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		TotalElements int `json:"totalElements"`
	} `json:"page"`
}

type tmEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Info   string `json:"info"`
	Images []struct {
		URL   string `json:"url"`
		Width int    `json:"width"`
	} `json:"images"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
			DateTime  string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
	} `json:"classifications"`
	PriceRanges []struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Promoter struct {
		Name string `json:"name"`
	} `json:"promoter"`
	Embedded struct {
		Venues []struct {
			Name    string `json:"name"`
			Address struct {
				Line1 string `json:"line1"`
			} `json:"address"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			State struct {
				StateCode string `json:"stateCode"`
			} `json:"state"`
			Location struct {
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			} `json:"location"`
		} `json:"venues"`
	} `json:"_embedded"`
}

func (t *Ticketmaster) Search(ctx context.Context, req models.SearchRequest) ([]models.Event, error) {
	u, err := url.Parse(t.BaseURL + "/events.json")
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: parse url: %w", err)
	}

	q := u.Query()
	q.Set("apikey", t.APIKey)
	q.Set("size", strconv.Itoa(req.Size))
	q.Set("page", strconv.Itoa(req.Page)) // 0-based, same as canonical
	if req.Keyword != "" {
		q.Set("keyword", req.Keyword)
	}
	if req.Coordinates != nil {
		q.Set("latlong", fmt.Sprintf("%f,%f", req.Coordinates.Lat, req.Coordinates.Lng))
		q.Set("radius", strconv.Itoa(req.Radius))
		q.Set("unit", "miles")
	} else if req.Location != "" {
		q.Set("city", req.Location)
	}
	if req.StartDate != "" {
		q.Set("startDateTime", toTMDateTime(req.StartDate))
	}
	if req.EndDate != "" {
		q.Set("endDateTime", toTMDateTime(req.EndDate))
	}
	if len(req.Categories) > 0 {
		q.Set("classificationName", strings.Join(req.Categories, ","))
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: build request: %w", err)
	}

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("ticketmaster: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(NameTicketmaster, resp, body)
	}

	var tr tmResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("ticketmaster: decode: %w", err)
	}

	out := make([]models.Event, 0, len(tr.Embedded.Events))
	for _, raw := range tr.Embedded.Events {
		if raw.ID == "" || raw.Name == "" {
			continue
		}
		out = append(out, mapTicketmasterEvent(raw))
	}
	return out, nil
}

// mapTicketmasterEvent is the pure Discovery-payload-to-canonical transform.
func mapTicketmasterEvent(raw tmEvent) models.Event {
	ev := models.Event{
		ID:          "tm_" + raw.ID,
		Title:       raw.Name,
		Description: raw.Info,
		Category:    "General Events",
		Date:        models.DateTBA,
		Time:        models.TimeTBA,
		Location:    models.VenueTBD,
		Address:     models.AddressTBA,
		Price:       models.PriceTBA,
		Organizer:   models.Organizer{Name: orDefault(raw.Promoter.Name, "Ticketmaster")},
	}

	if len(raw.Classifications) > 0 && raw.Classifications[0].Segment.Name != "" {
		ev.Category = normalizeTMSegment(raw.Classifications[0].Segment.Name)
	}

	if start, ok := parseTMStart(raw); ok {
		ev.Date = displayDate(start)
		if raw.Dates.Start.LocalTime != "" || raw.Dates.Start.DateTime != "" {
			ev.Time = displayTime(start)
		}
	}

	if len(raw.Embedded.Venues) > 0 {
		v := raw.Embedded.Venues[0]
		ev.Location = orDefault(v.Name, models.VenueTBD)
		ev.Address = orDefault(formatTMAddress(v.Address.Line1, v.City.Name, v.State.StateCode), models.AddressTBA)

		lat, errLat := strconv.ParseFloat(v.Location.Latitude, 64)
		lng, errLng := strconv.ParseFloat(v.Location.Longitude, 64)
		if errLat == nil && errLng == nil && (lat != 0 || lng != 0) {
			ev.Coordinates = &models.LatLng{Lat: lat, Lng: lng}
		}
	}

	if len(raw.PriceRanges) > 0 {
		ev.Price = displayPrice(raw.PriceRanges[0].Min, raw.PriceRanges[0].Max)
	}

	// widest image wins
	best := ""
	bestW := 0
	for _, img := range raw.Images {
		if img.Width > bestW {
			best, bestW = img.URL, img.Width
		}
	}
	ev.Image = best

	if raw.URL != "" {
		ev.TicketLinks = []models.TicketLink{{Source: "Ticketmaster", Link: raw.URL}}
	}
	return ev
}

func parseTMStart(raw tmEvent) (time.Time, bool) {
	if raw.Dates.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, raw.Dates.Start.DateTime); err == nil {
			return t, true
		}
	}
	if raw.Dates.Start.LocalDate != "" {
		layout := "2006-01-02"
		val := raw.Dates.Start.LocalDate
		if raw.Dates.Start.LocalTime != "" {
			layout = "2006-01-02 15:04:05"
			val += " " + raw.Dates.Start.LocalTime
		}
		if t, err := time.Parse(layout, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTMAddress(line1, city, state string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{line1, city, state} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func normalizeTMSegment(segment string) string {
	switch strings.ToLower(segment) {
	case "music":
		return "Music"
	case "sports":
		return "Sports"
	case "arts & theatre", "arts & theater":
		return "Arts"
	case "film":
		return "Film"
	case "miscellaneous":
		return "General Events"
	default:
		return segment
	}
}

// toTMDateTime converts an ISO date or datetime into the exact
// "2006-01-02T15:04:05Z" shape Discovery insists on.
func toTMDateTime(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.UTC().Format("2006-01-02T15:04:05Z")
	}
	if t, err := time.Parse("2006-01-02", iso); err == nil {
		return t.UTC().Format("2006-01-02T15:04:05Z")
	}
	return iso
}
