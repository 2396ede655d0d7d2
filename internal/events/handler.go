package events

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"eventscout/internal/aggregator"
	"eventscout/internal/auth"
	"eventscout/pkg/models"
)

// PreferenceSource loads a signed-in user's saved discovery preferences.
// Satisfied by auth.Repo.
type PreferenceSource interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
}

type Handler struct {
	Agg   *aggregator.Service
	Prefs PreferenceSource // optional
}

func NewHandler(agg *aggregator.Service, prefs PreferenceSource) *Handler {
	return &Handler{Agg: agg, Prefs: prefs}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)               // GET /events/search
	rg.GET("/featured", h.featured)           // GET /events/featured
	rg.GET("/category/:category", h.category) // GET /events/category/:category
}

func (h *Handler) search(c *gin.Context) {
	req := models.SearchRequest{
		Keyword:   c.Query("keyword"),
		Location:  c.Query("location"),
		Radius:    parseInt(c.Query("radius"), 0),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Page:      parseInt(c.Query("page"), 0),
		Size:      parseInt(c.Query("size"), 0),
		Sort:      c.Query("sort"),
	}

	if lat, lng, ok := parseLatLng(c.Query("lat"), c.Query("lng")); ok {
		req.Coordinates = &models.LatLng{Lat: lat, Lng: lng}
	}

	// categories=Concerts,Parties OR categories=Concerts&categories=Parties
	categories := c.QueryArray("categories")
	if len(categories) == 0 {
		if s := c.Query("categories"); s != "" {
			categories = strings.Split(s, ",")
		}
	}
	req.Categories = categories

	if prefs := parsePreferences(c); prefs != nil {
		req.Preferences = prefs
	} else if h.Prefs != nil {
		// signed-in users fall back to their saved preferences
		if claims := auth.MustGetClaims(c); claims != nil {
			if saved, err := h.Prefs.GetPreferences(c.Request.Context(), claims.UserID); err == nil && saved != nil {
				req.Preferences = saved
			}
		}
	}

	res, err := h.Agg.Search(c.Request.Context(), req)
	if err != nil {
		h.writeAggregateError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) featured(c *gin.Context) {
	res, err := h.Agg.Featured(c.Request.Context())
	if err != nil {
		h.writeAggregateError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) category(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category required"})
		return
	}

	res, err := h.Agg.ByCategory(c.Request.Context(), category)
	if err != nil {
		h.writeAggregateError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// writeAggregateError maps aggregation failures: no configured providers is a
// deployment problem (503), a total provider wipeout is an upstream problem
// (502).
func (h *Handler) writeAggregateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, aggregator.ErrNoProviders):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no event providers configured"})
	case errors.Is(err, aggregator.ErrAllProvidersFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "all event providers failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
	}
}

func parsePreferences(c *gin.Context) *models.Preferences {
	favs := c.QueryArray("fav_categories")
	if len(favs) == 0 {
		if s := c.Query("fav_categories"); s != "" {
			favs = strings.Split(s, ",")
		}
	}
	price := strings.TrimSpace(c.Query("price_pref"))
	tod := strings.TrimSpace(c.Query("time_pref"))

	if len(favs) == 0 && price == "" && tod == "" {
		return nil
	}
	return &models.Preferences{
		FavoriteCategories: favs,
		PricePreference:    price,
		TimePreference:     tod,
	}
}

func parseLatLng(latS, lngS string) (float64, float64, bool) {
	if strings.TrimSpace(latS) == "" || strings.TrimSpace(lngS) == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(lngS, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
