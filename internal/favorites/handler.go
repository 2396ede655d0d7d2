package favorites

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eventscout/internal/auth"
	"eventscout/internal/sync"
	"eventscout/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/favorites", h.list)
	rg.POST("/favorites", h.save)
	rg.GET("/favorites/:event_id", h.getOne)
	rg.DELETE("/favorites/:event_id", h.remove)
}

type saveReq struct {
	Event models.Event `json:"event"`
}

func (h *Handler) save(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	eventID := strings.TrimSpace(req.Event.ID)
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event.id required"})
		return
	}
	if strings.TrimSpace(req.Event.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event.title required"})
		return
	}

	fav := models.Favorite{
		UserID:  claims.UserID,
		EventID: eventID,
		Event:   req.Event,
	}
	if err := h.Repo.Upsert(c.Request.Context(), fav); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	// return the canonical stored row including created_at
	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	if saved == nil {
		saved = &fav
		saved.CreatedAt = time.Now().UTC()
	}

	if h.Hub != nil {
		ev := sync.FavoriteEvent{
			Type:       "favorite.update",
			UserID:     claims.UserID,
			EventID:    eventID,
			EventTitle: saved.Event.Title,
			At:         time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.List(c.Request.Context(), claims.UserID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id required"})
		return
	}

	fav, err := h.Repo.Get(c.Request.Context(), claims.UserID, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if fav == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, fav)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := sync.FavoriteEvent{
			Type:    "favorite.delete",
			UserID:  claims.UserID,
			EventID: eventID,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
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
