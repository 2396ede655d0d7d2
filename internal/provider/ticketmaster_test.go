package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventscout/pkg/models"
)

const tmSample = `{
  "_embedded": {
    "events": [
      {
        "id": "G5vYZ9",
        "name": "Jazz Night",
        "url": "https://www.ticketmaster.com/event/G5vYZ9",
        "info": "An evening of jazz standards",
        "images": [
          {"url": "https://img.tm/small.jpg", "width": 200},
          {"url": "https://img.tm/large.jpg", "width": 1024}
        ],
        "dates": {"start": {"localDate": "2026-09-12", "localTime": "19:30:00"}},
        "classifications": [{"segment": {"name": "Music"}}],
        "priceRanges": [{"min": 25, "max": 60, "currency": "USD"}],
        "promoter": {"name": "Blue Note Presents"},
        "_embedded": {
          "venues": [
            {
              "name": "Blue Note",
              "address": {"line1": "131 W 3rd St"},
              "city": {"name": "New York"},
              "state": {"stateCode": "NY"},
              "location": {"latitude": "40.7306", "longitude": "-74.0007"}
            }
          ]
        }
      }
    ]
  },
  "page": {"totalElements": 1}
}`

func TestTicketmasterSearch(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tmSample))
	}))
	defer srv.Close()

	tm := NewTicketmaster("test-key")
	tm.BaseURL = srv.URL

	req := models.SearchRequest{
		Keyword:     "jazz",
		Coordinates: &models.LatLng{Lat: 40.7128, Lng: -74.0060},
		Radius:      25,
		Page:        0,
		Size:        20,
	}
	events, err := tm.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// provider dialect: latlong + miles + 0-based page
	if got := gotQuery["unit"]; len(got) == 0 || got[0] != "miles" {
		t.Fatalf("expected unit=miles, got %v", got)
	}
	if got := gotQuery["page"]; len(got) == 0 || got[0] != "0" {
		t.Fatalf("expected page=0, got %v", got)
	}
	if got := gotQuery["apikey"]; len(got) == 0 || got[0] != "test-key" {
		t.Fatal("apikey not sent")
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID != "tm_G5vYZ9" {
		t.Fatalf("expected source-prefixed ID, got %q", ev.ID)
	}
	if ev.Title != "Jazz Night" || ev.Location != "Blue Note" {
		t.Fatalf("unexpected mapping: %+v", ev)
	}
	if ev.Category != "Music" {
		t.Fatalf("expected Music category, got %q", ev.Category)
	}
	if ev.Price != "$25.00 - $60.00" {
		t.Fatalf("unexpected price: %q", ev.Price)
	}
	if ev.Date != "Sep 12, 2026" || ev.Time != "7:30 PM" {
		t.Fatalf("unexpected date/time: %q %q", ev.Date, ev.Time)
	}
	if ev.Image != "https://img.tm/large.jpg" {
		t.Fatalf("expected widest image, got %q", ev.Image)
	}
	if ev.Coordinates == nil || ev.Coordinates.Lat != 40.7306 {
		t.Fatalf("coordinates not mapped: %+v", ev.Coordinates)
	}
	if ev.Address != "131 W 3rd St, New York, NY" {
		t.Fatalf("unexpected address: %q", ev.Address)
	}
	if len(ev.TicketLinks) != 1 || ev.TicketLinks[0].Source != "Ticketmaster" {
		t.Fatalf("ticket links not mapped: %+v", ev.TicketLinks)
	}
}

func TestTicketmasterHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"fault":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tm := NewTicketmaster("bad-key")
	tm.BaseURL = srv.URL

	_, err := tm.Search(context.Background(), models.SearchRequest{Size: 20})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Provider != NameTicketmaster {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
}

func TestMapTicketmasterEventSentinels(t *testing.T) {
	var raw tmEvent
	raw.ID = "x1"
	raw.Name = "Mystery Show"

	ev := mapTicketmasterEvent(raw)
	if ev.Date != models.DateTBA || ev.Time != models.TimeTBA {
		t.Fatalf("expected TBA date/time, got %q %q", ev.Date, ev.Time)
	}
	if ev.Location != models.VenueTBD || ev.Address != models.AddressTBA {
		t.Fatalf("expected venue sentinels, got %q %q", ev.Location, ev.Address)
	}
	if ev.Price != models.PriceTBA {
		t.Fatalf("expected price sentinel, got %q", ev.Price)
	}
	if ev.Attendees != nil {
		t.Fatal("attendees must stay nil when unknown")
	}
}

func TestTicketmasterDisabledWithoutKey(t *testing.T) {
	if NewTicketmaster("").Enabled() {
		t.Fatal("adapter without a key must be disabled")
	}
}
