package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"eventscout/internal/aggregator"
	"eventscout/internal/cache"
	"eventscout/internal/provider"
	"eventscout/pkg/models"
)

type stubProvider struct {
	name   string
	events []models.Event
	err    error

	gotReq models.SearchRequest
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Enabled() bool { return true }

func (s *stubProvider) Search(_ context.Context, req models.SearchRequest) ([]models.Event, error) {
	s.gotReq = req
	return s.events, s.err
}

func newRouter(providers ...provider.Provider) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	agg := aggregator.New(aggregator.Config{Providers: providers, Cache: cache.NewMemory(16)})
	h := NewHandler(agg, nil)

	r := gin.New()
	h.RegisterRoutes(r.Group("/events"))
	return r, h
}

func TestSearchEndpoint(t *testing.T) {
	p := &stubProvider{
		name: "ticketmaster",
		events: []models.Event{
			{ID: "tm_1", Title: "Jazz Night", Location: "Blue Note", Date: "Mar 1, 2026", Time: "8:00 PM"},
		},
	}
	r, _ := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/events/search?keyword=jazz&location=New+York&categories=Concerts,Parties&page=0&size=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var res models.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TotalCount != 1 || len(res.Events) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if p.gotReq.Keyword != "jazz" || p.gotReq.Location != "New York" {
		t.Fatalf("request not forwarded: %+v", p.gotReq)
	}
	if len(p.gotReq.Categories) != 2 {
		t.Fatalf("comma-separated categories not split: %v", p.gotReq.Categories)
	}
}

func TestSearchForwardsCoordinates(t *testing.T) {
	p := &stubProvider{name: "ticketmaster"}
	r, _ := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/events/search?lat=40.7128&lng=-74.0060", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if p.gotReq.Coordinates == nil || p.gotReq.Coordinates.Lat != 40.7128 {
		t.Fatalf("coordinates not forwarded: %+v", p.gotReq.Coordinates)
	}
}

func TestSearchNoProvidersIs503(t *testing.T) {
	r, _ := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/events/search?keyword=jazz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestSearchAllProvidersDownIs502(t *testing.T) {
	p := &stubProvider{name: "ticketmaster", err: context.DeadlineExceeded}
	r, _ := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/events/search?keyword=jazz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestFeaturedEndpoint(t *testing.T) {
	p := &stubProvider{
		name:   "ticketmaster",
		events: []models.Event{{ID: "tm_1", Title: "Festival", Location: "Park"}},
	}
	r, _ := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/events/featured", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var res models.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TotalCount != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCategoryEndpoint(t *testing.T) {
	p := &stubProvider{
		name:   "ticketmaster",
		events: []models.Event{{ID: "tm_1", Title: "Rave", Location: "Warehouse", Category: "Club Events"}},
	}
	r, _ := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/events/category/Club%20Events", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if len(p.gotReq.Categories) != 1 || p.gotReq.Categories[0] != "Club Events" {
		t.Fatalf("category filter not forwarded: %v", p.gotReq.Categories)
	}
}

func TestSearchPreferenceParams(t *testing.T) {
	p := &stubProvider{name: "ticketmaster"}
	r, _ := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/events/search?fav_categories=Concerts&price_pref=low&time_pref=evening", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	prefs := p.gotReq.Preferences
	if prefs == nil {
		t.Fatal("preferences not forwarded")
	}
	if prefs.PricePreference != "low" || prefs.TimePreference != "evening" {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
}
