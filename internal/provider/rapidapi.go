package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"eventscout/internal/inference"
	"eventscout/pkg/models"
)

const (
	rapidAPIBase = "https://real-time-events-search.p.rapidapi.com"
	rapidAPIHost = "real-time-events-search.p.rapidapi.com"
)

// RapidAPI adapts the real-time-events-search API. Its payloads are scraped
// listings: price and category are rarely structured, so both go through the
// inference heuristics.
type RapidAPI struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewRapidAPI(apiKey string) *RapidAPI {
	return &RapidAPI{
		BaseURL: rapidAPIBase,
		APIKey:  apiKey,
		Client:  defaultClient(),
	}
}

func (r *RapidAPI) Name() string  { return NameRapidAPI }
func (r *RapidAPI) Enabled() bool { return r.APIKey != "" }

type raResponse struct {
	Status string    `json:"status"`
	Data   []raEvent `json:"data"`
}

type raEvent struct {
	EventID     string   `json:"event_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	StartTime   string   `json:"start_time"` // "2026-08-25 19:00:00"
	Thumbnail   string   `json:"thumbnail"`
	Publisher   string   `json:"publisher"`
	IsFree      *bool    `json:"is_free"`
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	Tags        []string `json:"tags"`
	Venue       struct {
		Name        string  `json:"name"`
		FullAddress string  `json:"full_address"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Subtype     string  `json:"subtype"`
	} `json:"venue"`
	TicketLinks []struct {
		Source string `json:"source"`
		Link   string `json:"link"`
	} `json:"ticket_links"`
}

func (r *RapidAPI) Search(ctx context.Context, req models.SearchRequest) ([]models.Event, error) {
	u, err := url.Parse(r.BaseURL + "/search-events")
	if err != nil {
		return nil, fmt.Errorf("rapidapi: parse url: %w", err)
	}

	// The API takes one free-text query; fold keyword and location into it.
	query := req.Keyword
	if req.Location != "" {
		if query != "" {
			query += " in " + req.Location
		} else {
			query = "events in " + req.Location
		}
	}
	if query == "" {
		query = "events"
	}

	q := u.Query()
	q.Set("query", query)
	q.Set("start", strconv.Itoa(req.Page*req.Size))
	if req.StartDate != "" {
		q.Set("date", "any")
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("rapidapi: build request: %w", err)
	}
	httpReq.Header.Set("X-RapidAPI-Key", r.APIKey)
	httpReq.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rapidapi: request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("rapidapi: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(NameRapidAPI, resp, body)
	}

	var rr raResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("rapidapi: decode: %w", err)
	}

	out := make([]models.Event, 0, len(rr.Data))
	for _, raw := range rr.Data {
		if raw.EventID == "" || raw.Name == "" {
			continue
		}
		out = append(out, mapRapidAPIEvent(raw))
	}
	return out, nil
}

// mapRapidAPIEvent is the pure transform. Price and category come from the
// inference heuristics since the payload has no reliable structured fields.
func mapRapidAPIEvent(raw raEvent) models.Event {
	var start *time.Time
	if raw.StartTime != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", raw.StartTime); err == nil {
			start = &t
		}
	}

	links := make([]string, 0, len(raw.TicketLinks))
	ticketLinks := make([]models.TicketLink, 0, len(raw.TicketLinks))
	for _, tl := range raw.TicketLinks {
		if tl.Link == "" {
			continue
		}
		links = append(links, tl.Link)
		ticketLinks = append(ticketLinks, models.TicketLink{
			Source: orDefault(tl.Source, "Tickets"),
			Link:   tl.Link,
		})
	}

	infRaw := inference.RawEvent{
		Name:         raw.Name,
		Description:  raw.Description,
		Link:         raw.Link,
		IsFree:       raw.IsFree,
		MinPrice:     raw.MinPrice,
		MaxPrice:     raw.MaxPrice,
		TicketLinks:  links,
		Tags:         raw.Tags,
		VenueName:    raw.Venue.Name,
		VenueSubtype: raw.Venue.Subtype,
		Start:        start,
	}

	ev := models.Event{
		ID:          "ra_" + raw.EventID,
		Title:       raw.Name,
		Description: raw.Description,
		Category:    inference.Categorize(infRaw),
		Date:        models.DateTBA,
		Time:        models.TimeTBA,
		Location:    orDefault(raw.Venue.Name, models.VenueTBD),
		Address:     orDefault(raw.Venue.FullAddress, models.AddressTBA),
		Price:       inference.ExtractPrice(infRaw),
		Image:       raw.Thumbnail,
		Organizer:   models.Organizer{Name: orDefault(raw.Publisher, "RapidAPI")},
		TicketLinks: ticketLinks,
	}

	if start != nil {
		ev.Date = displayDate(*start)
		ev.Time = displayTime(*start)
	}

	if raw.Venue.Latitude != 0 || raw.Venue.Longitude != 0 {
		ev.Coordinates = &models.LatLng{Lat: raw.Venue.Latitude, Lng: raw.Venue.Longitude}
	}
	return ev
}
