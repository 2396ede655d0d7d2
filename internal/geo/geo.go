// Package geo resolves free-form place names to coordinates and computes
// distances for the distance sort.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"eventscout/pkg/models"
)

// Point is a named geographic location.
type Point struct {
	Name string
	Lat  float64
	Lng  float64
}

// Geocoder turns a free-form location string into coordinates.
type Geocoder interface {
	Forward(ctx context.Context, query string) (Point, error)
}

const mapboxBase = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// MapboxGeocoder is a thin client for the Mapbox forward-geocoding endpoint.
type MapboxGeocoder struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewMapbox(baseURL, token string) *MapboxGeocoder {
	if baseURL == "" {
		baseURL = mapboxBase
	}
	return &MapboxGeocoder{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type mapboxResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

func (g *MapboxGeocoder) Forward(ctx context.Context, query string) (Point, error) {
	u := fmt.Sprintf("%s/%s.json?access_token=%s&limit=1",
		g.BaseURL, url.PathEscape(query), url.QueryEscape(g.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Point{}, fmt.Errorf("geocode: status %d: %s", resp.StatusCode, string(body))
	}

	var mr mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return Point{}, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(mr.Features) == 0 || len(mr.Features[0].Center) < 2 {
		return Point{}, fmt.Errorf("geocode: no result for %q", query)
	}

	f := mr.Features[0]
	return Point{Name: f.PlaceName, Lat: f.Center[1], Lng: f.Center[0]}, nil
}

const earthRadiusMiles = 3958.8

// Haversine returns the great-circle distance between two points in miles.
func Haversine(a, b models.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
