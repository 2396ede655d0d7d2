package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventscout/pkg/models"
)

const raSample = `{
  "status": "OK",
  "data": [
    {
      "event_id": "ev-900",
      "name": "Warehouse Concert Series",
      "description": "Live music all night, tickets $20",
      "link": "https://allevents.example/ev-900",
      "start_time": "2026-08-29 21:00:00",
      "thumbnail": "https://img.ra/thumb.jpg",
      "publisher": "AllEvents",
      "venue": {
        "name": "The Warehouse",
        "full_address": "42 Dock St, Brooklyn, NY",
        "latitude": 40.7033,
        "longitude": -73.9881,
        "subtype": "music_venue"
      },
      "ticket_links": [
        {"source": "SeeTickets", "link": "https://www.seetickets.us/event/x/price/20"}
      ],
      "tags": ["music", "nightlife"]
    }
  ]
}`

func TestRapidAPISearch(t *testing.T) {
	var gotKey, gotHost string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(raSample))
	}))
	defer srv.Close()

	ra := NewRapidAPI("test-key")
	ra.BaseURL = srv.URL

	req := models.SearchRequest{Keyword: "concert", Location: "Brooklyn", Page: 0, Size: 20}
	events, err := ra.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotKey != "test-key" || gotHost == "" {
		t.Fatalf("rapidapi headers missing: key=%q host=%q", gotKey, gotHost)
	}
	if got := gotQuery["query"]; len(got) == 0 || got[0] != "concert in Brooklyn" {
		t.Fatalf("unexpected query: %v", got)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID != "ra_ev-900" {
		t.Fatalf("expected source-prefixed ID, got %q", ev.ID)
	}
	// category inferred from name/tags
	if ev.Category != "Concerts" {
		t.Fatalf("expected inferred Concerts category, got %q", ev.Category)
	}
	// price inferred from the SeeTickets URL, which outranks the "$20" text
	if ev.Price != "$20.00" {
		t.Fatalf("expected URL-derived price, got %q", ev.Price)
	}
	if ev.Date != "Aug 29, 2026" || ev.Time != "9:00 PM" {
		t.Fatalf("unexpected date/time: %q %q", ev.Date, ev.Time)
	}
	if ev.Coordinates == nil || ev.Coordinates.Lat != 40.7033 {
		t.Fatalf("coordinates not mapped: %+v", ev.Coordinates)
	}
	if len(ev.TicketLinks) != 1 || ev.TicketLinks[0].Source != "SeeTickets" {
		t.Fatalf("ticket links not mapped: %+v", ev.TicketLinks)
	}
}

func TestMapRapidAPIEventSentinels(t *testing.T) {
	raw := raEvent{EventID: "e1", Name: "Pop-up Gathering"}
	ev := mapRapidAPIEvent(raw)
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

func TestRapidAPIMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":`))
	}))
	defer srv.Close()

	ra := NewRapidAPI("k")
	ra.BaseURL = srv.URL
	if _, err := ra.Search(context.Background(), models.SearchRequest{Size: 20}); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
}
