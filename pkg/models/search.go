package models

import (
	"fmt"
	"sort"
	"strings"
)

// Sort keys accepted by SearchRequest.Sort. Empty means preference-weighted
// ranking.
const (
	SortDate       = "date"
	SortPopularity = "popularity"
	SortPrice      = "price"
	SortDistance   = "distance"
)

// Preference bands for price and time of day.
const (
	PrefAny = "any"

	PriceFree   = "free"
	PriceLow    = "low"
	PriceMedium = "medium"
	PriceHigh   = "high"

	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeNight     = "night"
)

// Preferences tunes the default ranking when no explicit sort is requested.
type Preferences struct {
	FavoriteCategories []string `json:"favorite_categories"`
	PricePreference    string   `json:"price_preference"` // free|low|medium|high|any
	TimePreference     string   `json:"time_preference"`  // morning|afternoon|evening|night|any
}

// SearchRequest is the canonical query all provider adapters translate from.
// Constructed per search; never persisted.
type SearchRequest struct {
	Keyword     string   `json:"keyword,omitempty"`
	Location    string   `json:"location,omitempty"`
	Coordinates *LatLng  `json:"coordinates,omitempty"`
	Radius      int      `json:"radius,omitempty"` // miles
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Page        int      `json:"page"` // 0-based
	Size        int      `json:"size"`
	Sort        string   `json:"sort,omitempty"`

	Preferences *Preferences `json:"preferences,omitempty"`
}

const (
	DefaultRadius = 25
	DefaultSize   = 20
	MaxSize       = 100
)

// Normalize fills defaults and clamps out-of-range values in place.
func (r *SearchRequest) Normalize() {
	if r.Radius <= 0 {
		r.Radius = DefaultRadius
	}
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 || r.Size > MaxSize {
		r.Size = DefaultSize
	}
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.Location = strings.TrimSpace(r.Location)
}

// CacheKey is a deterministic serialization of everything that affects the
// pre-pagination result set. Page is excluded on purpose: all pages of one
// query share a single cached aggregation.
func (r SearchRequest) CacheKey() string {
	cats := append([]string(nil), r.Categories...)
	sort.Strings(cats)

	var b strings.Builder
	b.WriteString("search:")
	fmt.Fprintf(&b, "kw=%s|loc=%s|", strings.ToLower(r.Keyword), strings.ToLower(r.Location))
	if r.Coordinates != nil {
		fmt.Fprintf(&b, "geo=%.4f,%.4f|", r.Coordinates.Lat, r.Coordinates.Lng)
	}
	fmt.Fprintf(&b, "rad=%d|start=%s|end=%s|cats=%s|sort=%s",
		r.Radius, r.StartDate, r.EndDate, strings.ToLower(strings.Join(cats, ",")), r.Sort)
	if p := r.Preferences; p != nil {
		favs := append([]string(nil), p.FavoriteCategories...)
		sort.Strings(favs)
		fmt.Fprintf(&b, "|pref=%s;%s;%s",
			strings.ToLower(strings.Join(favs, ",")), p.PricePreference, p.TimePreference)
	}
	return b.String()
}

// Performance is timing/cache metadata returned with every aggregation.
type Performance struct {
	TotalTimeMs int64 `json:"total_time_ms"`
	APICalls    int   `json:"api_calls"`
	CacheHits   int   `json:"cache_hits"`
}

// SearchResult is the aggregated, deduplicated, ranked and paginated answer
// to one SearchRequest.
type SearchResult struct {
	Events     []Event     `json:"events"`
	TotalCount int         `json:"total_count"` // post-dedup, pre-pagination
	Page       int         `json:"page"`
	Sources    []string    `json:"sources"` // providers that contributed >= 1 event
	Perf       Performance `json:"performance"`
}
