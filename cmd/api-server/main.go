package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"eventscout/internal/aggregator"
	"eventscout/internal/auth"
	"eventscout/internal/cache"
	"eventscout/internal/config"
	"eventscout/internal/events"
	"eventscout/internal/favorites"
	"eventscout/internal/geo"
	"eventscout/internal/metrics"
	"eventscout/internal/provider"
	"eventscout/internal/ratelimit"
	synchub "eventscout/internal/sync"
	"eventscout/pkg/database"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("EVENTSCOUT_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	// cache backend
	var store cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		rc := cache.NewRedis(cfg.Cache.RedisAddr, logger)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			cancel()
			logger.Fatal("redis cache", zap.Error(err))
		}
		cancel()
		defer rc.Close()
		store = rc
	default:
		store = cache.NewMemory(cfg.Cache.MaxEntries)
	}

	// per-provider request budgets
	limiter := ratelimit.New()
	limiter.SetBudget(provider.NameTicketmaster, cfg.Providers.Ticketmaster.RequestsPerMinute)
	limiter.SetBudget(provider.NameEventbrite, cfg.Providers.Eventbrite.RequestsPerMinute)
	limiter.SetBudget(provider.NamePredictHQ, cfg.Providers.PredictHQ.RequestsPerMinute)
	limiter.SetBudget(provider.NameRapidAPI, cfg.Providers.RapidAPI.RequestsPerMinute)

	// priority order decides dedup ties
	providers := []provider.Provider{
		provider.NewTicketmaster(cfg.Providers.Ticketmaster.APIKey),
		provider.NewEventbrite(cfg.Providers.Eventbrite.APIKey),
		provider.NewPredictHQ(cfg.Providers.PredictHQ.APIKey),
		provider.NewRapidAPI(cfg.Providers.RapidAPI.APIKey),
	}

	var geocoder geo.Geocoder
	if cfg.Geo.Token != "" {
		geocoder = geo.NewMapbox(cfg.Geo.BaseURL, cfg.Geo.Token)
	}

	m := metrics.New()

	agg := aggregator.New(aggregator.Config{
		Providers:   providers,
		Limiter:     limiter,
		Cache:       store,
		Geocoder:    geocoder,
		Logger:      logger,
		Metrics:     m,
		SearchTTL:   cfg.Cache.SearchTTL,
		FeaturedTTL: cfg.Cache.FeaturedTTL,
	})

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub, logger))
	tcpSrv := synchub.NewServer(cfg.Server.SyncAddr, hub, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Events (public; signed-in users get saved-preference ranking)
	eventsGroup := router.Group("/events")
	eventsGroup.Use(auth.OptionalAuthMiddleware(tokenSvc, authRepo))
	events.NewHandler(agg, authRepo).RegisterRoutes(eventsGroup)

	// Favorites (protected)
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))
	favRepo := favorites.NewRepo(db)
	favorites.NewHandler(favRepo, hub).RegisterRoutes(protected)

	// background featured refresh
	var sched *cron.Cron
	if cfg.FeaturedRefresh != "" {
		sched = cron.New()
		_, err := sched.AddFunc(cfg.FeaturedRefresh, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := agg.RefreshFeatured(ctx); err != nil {
				logger.Warn("featured refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("featured refresh schedule", zap.Error(err))
		}
		sched.Start()
	}

	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down servers")
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	if err := tcpSrv.Close(); err != nil {
		logger.Error("tcp shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("servers stopped")
}
