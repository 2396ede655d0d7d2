package geo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventscout/pkg/models"
)

func TestHaversineKnownDistance(t *testing.T) {
	// NYC to Philadelphia, roughly 80 miles.
	nyc := models.LatLng{Lat: 40.7128, Lng: -74.0060}
	philly := models.LatLng{Lat: 39.9526, Lng: -75.1652}

	d := Haversine(nyc, philly)
	if d < 75 || d > 85 {
		t.Fatalf("expected ~80 miles, got %.1f", d)
	}
}

func TestHaversineZero(t *testing.T) {
	p := models.LatLng{Lat: 40.0, Lng: -74.0}
	if d := Haversine(p, p); math.Abs(d) > 1e-9 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestForwardGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"place_name":"New York, New York, United States","center":[-74.006,40.7128]}]}`))
	}))
	defer srv.Close()

	g := NewMapbox(srv.URL, "test-token")
	p, err := g.Forward(context.Background(), "New York")
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if p.Lat != 40.7128 || p.Lng != -74.006 {
		t.Fatalf("unexpected point: %+v", p)
	}
	if p.Name == "" {
		t.Fatal("expected place name")
	}
}

func TestForwardGeocodeNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	g := NewMapbox(srv.URL, "test-token")
	if _, err := g.Forward(context.Background(), "nowhere-at-all"); err == nil {
		t.Fatal("expected error for empty feature list")
	}
}

func TestForwardGeocodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewMapbox(srv.URL, "bad-token")
	if _, err := g.Forward(context.Background(), "New York"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
