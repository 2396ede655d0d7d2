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

const predicthqBase = "https://api.predicthq.com/v1"

// PredictHQ adapts the v1 events API. Quirks: geo filter is a single
// "within" string (<radius>mi@lat,lng), pagination is limit/offset, and
// attendance comes back as a forecast (phq_attendance).
type PredictHQ struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewPredictHQ(token string) *PredictHQ {
	return &PredictHQ{
		BaseURL: predicthqBase,
		Token:   token,
		Client:  defaultClient(),
	}
}

func (p *PredictHQ) Name() string  { return NamePredictHQ }
func (p *PredictHQ) Enabled() bool { return p.Token != "" }

type phqResponse struct {
	Count   int        `json:"count"`
	Results []phqEvent `json:"results"`
}

type phqEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Start       string    `json:"start"`
	Location    []float64 `json:"location"` // [lng, lat]
	Attendance  int       `json:"phq_attendance"`
	Entities    []struct {
		Type             string `json:"type"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"entities"`
	Labels []string `json:"labels"`
}

func (p *PredictHQ) Search(ctx context.Context, req models.SearchRequest) ([]models.Event, error) {
	u, err := url.Parse(p.BaseURL + "/events/")
	if err != nil {
		return nil, fmt.Errorf("predicthq: parse url: %w", err)
	}

	q := u.Query()
	if req.Keyword != "" {
		q.Set("q", req.Keyword)
	}
	if req.Coordinates != nil {
		q.Set("within", fmt.Sprintf("%dmi@%f,%f", req.Radius, req.Coordinates.Lat, req.Coordinates.Lng))
	} else if req.Location != "" {
		q.Set("place.scope", req.Location)
	}
	if req.StartDate != "" {
		q.Set("active.gte", req.StartDate)
	}
	if req.EndDate != "" {
		q.Set("active.lte", req.EndDate)
	}
	if len(req.Categories) > 0 {
		q.Set("category", toPHQCategories(req.Categories))
	}
	q.Set("limit", strconv.Itoa(req.Size))
	q.Set("offset", strconv.Itoa(req.Page*req.Size))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("predicthq: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.Token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("predicthq: request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("predicthq: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(NamePredictHQ, resp, body)
	}

	var pr phqResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("predicthq: decode: %w", err)
	}

	out := make([]models.Event, 0, len(pr.Results))
	for _, raw := range pr.Results {
		if raw.ID == "" || raw.Title == "" {
			continue
		}
		out = append(out, mapPredictHQEvent(raw))
	}
	return out, nil
}

// mapPredictHQEvent is the pure v1-payload-to-canonical transform.
func mapPredictHQEvent(raw phqEvent) models.Event {
	ev := models.Event{
		ID:          "phq_" + raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Category:    normalizePHQCategory(raw.Category),
		Date:        models.DateTBA,
		Time:        models.TimeTBA,
		Location:    models.VenueTBD,
		Address:     models.AddressTBA,
		// PredictHQ is a demand-intelligence feed, not a ticket seller.
		Price:     models.PriceTBA,
		Organizer: models.Organizer{Name: "PredictHQ"},
	}

	if raw.Start != "" {
		if t, err := time.Parse(time.RFC3339, raw.Start); err == nil {
			ev.Date = displayDate(t)
			ev.Time = displayTime(t)
		}
	}

	for _, ent := range raw.Entities {
		if ent.Type == "venue" {
			ev.Location = orDefault(ent.Name, models.VenueTBD)
			ev.Address = orDefault(ent.FormattedAddress, models.AddressTBA)
			break
		}
	}

	if len(raw.Location) >= 2 {
		lng, lat := raw.Location[0], raw.Location[1]
		if lat != 0 || lng != 0 {
			ev.Coordinates = &models.LatLng{Lat: lat, Lng: lng}
		}
	}

	if raw.Attendance > 0 {
		att := raw.Attendance
		ev.Attendees = &att
	}
	return ev
}

// toPHQCategories maps canonical category labels onto PredictHQ's fixed
// category vocabulary.
func toPHQCategories(cats []string) string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "music", "concerts":
			out = append(out, "concerts")
		case "sports":
			out = append(out, "sports")
		case "arts", "theatre", "theater":
			out = append(out, "performing-arts")
		case "festivals":
			out = append(out, "festivals")
		case "community":
			out = append(out, "community")
		}
	}
	if len(out) == 0 {
		return "concerts,festivals,performing-arts,community,sports"
	}
	return strings.Join(out, ",")
}

func normalizePHQCategory(c string) string {
	switch c {
	case "concerts":
		return "Music"
	case "performing-arts":
		return "Arts"
	case "sports":
		return "Sports"
	case "festivals":
		return "Festivals"
	case "community":
		return "Community"
	case "":
		return "General Events"
	default:
		return titleWords(strings.ReplaceAll(c, "-", " "))
	}
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
