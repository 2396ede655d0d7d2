// Package aggregator fans one canonical search out to every enabled provider
// concurrently, then merges the answers: settle-all collection, dedup,
// ranking, pagination, and a TTL cache in front of it all.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"eventscout/internal/cache"
	"eventscout/internal/geo"
	"eventscout/internal/metrics"
	"eventscout/internal/provider"
	"eventscout/internal/ratelimit"
	"eventscout/pkg/models"
)

// ErrNoProviders is returned when not a single provider has valid
// configuration. This is fatal for the search, not retryable.
var ErrNoProviders = errors.New("no event providers are configured")

// ErrAllProvidersFailed is returned when every enabled provider rejected the
// search in one pass.
var ErrAllProvidersFailed = errors.New("all event providers failed")

// Config wires a Service. Providers must already be in priority order;
// earlier providers win dedup ties.
type Config struct {
	Providers []provider.Provider
	Limiter   *ratelimit.Limiter
	Cache     cache.Cache
	Geocoder  geo.Geocoder // optional
	Logger    *zap.Logger
	Metrics   *metrics.Metrics // optional

	SearchTTL       time.Duration
	FeaturedTTL     time.Duration
	ProviderTimeout time.Duration
}

// Service owns all aggregation state. Construct one per process with New;
// there are no package-level singletons, so tests get full isolation from
// fresh instances.
type Service struct {
	providers []provider.Provider
	limiter   *ratelimit.Limiter
	cache     cache.Cache
	geocoder  geo.Geocoder
	logger    *zap.Logger
	metrics   *metrics.Metrics

	searchTTL       time.Duration
	featuredTTL     time.Duration
	providerTimeout time.Duration
}

const (
	defaultSearchTTL       = 5 * time.Minute
	defaultFeaturedTTL     = 15 * time.Minute
	defaultProviderTimeout = 8 * time.Second

	// fetchSize is how many events each provider is asked for per
	// aggregation, independent of the caller's page size: the cache stores
	// the full pre-pagination set, so one provider pass must cover several
	// result pages.
	fetchSize = 50
)

func New(cfg Config) *Service {
	s := &Service{
		providers:       cfg.Providers,
		limiter:         cfg.Limiter,
		cache:           cfg.Cache,
		geocoder:        cfg.Geocoder,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		searchTTL:       cfg.SearchTTL,
		featuredTTL:     cfg.FeaturedTTL,
		providerTimeout: cfg.ProviderTimeout,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("aggregator")
	if s.limiter == nil {
		s.limiter = ratelimit.New()
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(0)
	}
	if s.searchTTL <= 0 {
		s.searchTTL = defaultSearchTTL
	}
	if s.featuredTTL <= 0 {
		s.featuredTTL = defaultFeaturedTTL
	}
	if s.providerTimeout <= 0 {
		s.providerTimeout = defaultProviderTimeout
	}
	return s
}

// fullResult is the cached, pre-pagination aggregation.
type fullResult struct {
	Events  []models.Event `json:"events"`
	Sources []string       `json:"sources"`
}

// Search runs one aggregated search: cache lookup, settle-all provider
// fan-out, dedup, rank, paginate. Individual provider failures are absorbed;
// only zero enabled providers or a total wipeout surface as errors.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	started := time.Now()
	req.Normalize()

	if s.metrics != nil {
		s.metrics.SearchesTotal.Inc()
		defer func() {
			s.metrics.SearchDuration.Observe(time.Since(started).Seconds())
		}()
	}

	key := req.CacheKey()
	if b, ok := s.cache.Get(ctx, key); ok {
		var full fullResult
		if err := json.Unmarshal(b, &full); err == nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return s.paginate(req, full, started, 0, 1), nil
		}
		// a corrupt entry is a miss; fall through and overwrite it
		s.logger.Warn("dropping corrupt cache entry", zap.String("key", key))
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	enabled := s.enabledProviders()
	if len(enabled) == 0 {
		return nil, ErrNoProviders
	}

	s.resolveCoordinates(ctx, &req)

	full, apiCalls, err := s.fanOut(ctx, enabled, req)
	if err != nil {
		return nil, err
	}

	full.Events = Deduplicate(full.Events)
	full.Events = Rank(full.Events, req)

	if b, err := json.Marshal(full); err == nil {
		s.cache.Set(ctx, key, b, s.searchTTL)
	}

	return s.paginate(req, full, started, apiCalls, 0), nil
}

// settled is one provider branch's outcome. Every branch produces exactly
// one settled value, success or failure.
type settled struct {
	name   string
	events []models.Event
	called bool
	err    error
}

// fanOut launches one goroutine per enabled provider and waits for all of
// them. No branch failure ever aborts a sibling.
func (s *Service) fanOut(ctx context.Context, enabled []provider.Provider, req models.SearchRequest) (fullResult, int, error) {
	fetch := req
	fetch.Page = 0
	fetch.Size = fetchSize

	results := make([]settled, len(enabled))
	var wg sync.WaitGroup
	for i, p := range enabled {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			results[i] = s.callProvider(ctx, p, fetch)
		}(i, p)
	}
	wg.Wait()

	var full fullResult
	apiCalls := 0
	succeeded := 0
	for _, r := range results {
		if r.called {
			apiCalls++
		}
		if r.err != nil {
			// absorbed: this provider contributes zero events
			s.logger.Warn("provider failed",
				zap.String("provider", r.name),
				zap.Error(r.err))
			continue
		}
		succeeded++
		if len(r.events) > 0 {
			full.Sources = append(full.Sources, r.name)
			full.Events = append(full.Events, r.events...)
		}
	}

	if succeeded == 0 {
		return fullResult{}, apiCalls, fmt.Errorf("%w: %d providers attempted", ErrAllProvidersFailed, len(enabled))
	}
	return full, apiCalls, nil
}

func (s *Service) callProvider(ctx context.Context, p provider.Provider, req models.SearchRequest) settled {
	res := settled{name: p.Name()}

	if err := s.limiter.Allow(p.Name()); err != nil {
		if s.metrics != nil {
			s.metrics.ProviderRequests.WithLabelValues(p.Name(), metrics.StatusRateLimited).Inc()
		}
		res.err = err
		return res
	}

	pctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	res.called = true
	events, err := p.Search(pctx, req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ProviderRequests.WithLabelValues(p.Name(), metrics.StatusError).Inc()
		}
		res.err = err
		return res
	}
	if s.metrics != nil {
		s.metrics.ProviderRequests.WithLabelValues(p.Name(), metrics.StatusOK).Inc()
	}
	res.events = events
	return res
}

func (s *Service) enabledProviders() []provider.Provider {
	out := make([]provider.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}

// resolveCoordinates geocodes the free-form location when the caller didn't
// supply coordinates. Failure is non-fatal: providers that need coordinates
// fall back to their own location-name filters.
func (s *Service) resolveCoordinates(ctx context.Context, req *models.SearchRequest) {
	if req.Coordinates != nil || req.Location == "" || s.geocoder == nil {
		return
	}
	gctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := s.geocoder.Forward(gctx, req.Location)
	if err != nil {
		s.logger.Warn("geocoding failed, continuing without coordinates",
			zap.String("location", req.Location),
			zap.Error(err))
		return
	}
	req.Coordinates = &models.LatLng{Lat: p.Lat, Lng: p.Lng}
}

func (s *Service) paginate(req models.SearchRequest, full fullResult, started time.Time, apiCalls, cacheHits int) *models.SearchResult {
	total := len(full.Events)

	start := req.Page * req.Size
	if start > total {
		start = total
	}
	end := start + req.Size
	if end > total {
		end = total
	}

	sources := full.Sources
	if sources == nil {
		sources = []string{}
	}

	return &models.SearchResult{
		Events:     append([]models.Event{}, full.Events[start:end]...),
		TotalCount: total,
		Page:       req.Page,
		Sources:    sources,
		Perf: models.Performance{
			TotalTimeMs: time.Since(started).Milliseconds(),
			APICalls:    apiCalls,
			CacheHits:   cacheHits,
		},
	}
}

// Featured returns a cached general listing for the landing page, refreshed
// on a longer TTL than searches.
func (s *Service) Featured(ctx context.Context) (*models.SearchResult, error) {
	return s.cannedSearch(ctx, models.SearchRequest{Size: models.DefaultSize}, "featured")
}

// ByCategory returns a cached listing for one category.
func (s *Service) ByCategory(ctx context.Context, category string) (*models.SearchResult, error) {
	req := models.SearchRequest{Categories: []string{category}, Size: models.DefaultSize}
	return s.cannedSearch(ctx, req, "category:"+category)
}

func (s *Service) cannedSearch(ctx context.Context, req models.SearchRequest, key string) (*models.SearchResult, error) {
	started := time.Now()
	req.Normalize()

	cacheKey := "listing:" + key
	if b, ok := s.cache.Get(ctx, cacheKey); ok {
		var full fullResult
		if err := json.Unmarshal(b, &full); err == nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return s.paginate(req, full, started, 0, 1), nil
		}
	}

	enabled := s.enabledProviders()
	if len(enabled) == 0 {
		return nil, ErrNoProviders
	}

	full, apiCalls, err := s.fanOut(ctx, enabled, req)
	if err != nil {
		return nil, err
	}
	full.Events = Deduplicate(full.Events)
	full.Events = Rank(full.Events, req)

	if b, err := json.Marshal(full); err == nil {
		s.cache.Set(ctx, cacheKey, b, s.featuredTTL)
	}
	return s.paginate(req, full, started, apiCalls, 0), nil
}

// RefreshFeatured re-runs the featured aggregation and overwrites its cache
// entry, regardless of remaining TTL. Driven by the background cron job.
func (s *Service) RefreshFeatured(ctx context.Context) error {
	req := models.SearchRequest{Size: models.DefaultSize}
	req.Normalize()

	enabled := s.enabledProviders()
	if len(enabled) == 0 {
		return ErrNoProviders
	}

	full, _, err := s.fanOut(ctx, enabled, req)
	if err != nil {
		return err
	}
	full.Events = Deduplicate(full.Events)
	full.Events = Rank(full.Events, req)

	b, err := json.Marshal(full)
	if err != nil {
		return fmt.Errorf("marshal featured listing: %w", err)
	}
	s.cache.Set(ctx, "listing:featured", b, s.featuredTTL)
	return nil
}
