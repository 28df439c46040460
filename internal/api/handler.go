package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-raid-alerts/internal/broadcast"
	"github.com/mr1hm/go-raid-alerts/internal/filter"
	"github.com/mr1hm/go-raid-alerts/internal/ingestion"
	"github.com/mr1hm/go-raid-alerts/internal/metrics"
	"github.com/mr1hm/go-raid-alerts/internal/models"
	"github.com/mr1hm/go-raid-alerts/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// Submitter accepts channel messages for filtering.
type Submitter interface {
	Submit(ctx context.Context, msg models.Message) error
}

type Handler struct {
	alerts      repository.AlertRepository
	subscribers repository.SubscriberRepository
	ingest      Submitter
	broadcaster *broadcast.Broadcaster
	metrics     *metrics.Metrics
}

func NewHandler(alerts repository.AlertRepository, subscribers repository.SubscriberRepository, ingest Submitter, broadcaster *broadcast.Broadcaster, m *metrics.Metrics) *Handler {
	return &Handler{
		alerts:      alerts,
		subscribers: subscribers,
		ingest:      ingest,
		broadcaster: broadcaster,
		metrics:     m,
	}
}

// RegisterRoutes mounts the API. ingestRPS limits POST /api/messages.
func (h *Handler) RegisterRoutes(r *gin.Engine, ingestRPS int) {
	r.GET("/health", h.health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	api := r.Group("/api")
	api.POST("/messages", RateLimitMiddleware(ingestRPS), h.postMessage)

	api.GET("/alerts", h.getAlerts)
	api.GET("/alerts/stream", h.streamAlerts)
	api.GET("/alerts/:id", h.getAlert)

	api.GET("/subscribers", h.getSubscribers)
	api.POST("/subscribers", h.addSubscriber)
	api.DELETE("/subscribers/:chat_id", h.removeSubscriber)
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.broadcaster != nil {
		resp["stream_clients"] = h.broadcaster.SubscriberCount()
		resp["stream_dropped"] = h.broadcaster.Dropped()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := models.Message{
		SourceID:    req.SourceID,
		SourceTitle: req.SourceTitle,
		Text:        req.Text,
		ReceivedAt:  time.Now().UTC(),
	}
	if err := h.ingest.Submit(c.Request.Context(), msg); err != nil {
		if errors.Is(err, ingestion.ErrStopped) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion stopped"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to queue message"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *Handler) getAlerts(c *gin.Context) {
	opts := repository.Filter{
		Limit: defaultLimit, // Default to 20 alerts if limit param not supplied
	}

	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxLimit {
			opts.Limit = lim
		}
	}
	if o := c.Query("offset"); o != "" {
		if off, err := strconv.Atoi(o); err == nil && off >= 0 {
			opts.Offset = off
		}
	}
	if s := c.Query("since"); s != "" {
		if t, ok := parseSince(s); ok {
			opts.Since = &t
		}
	}
	if k := c.Query("kind"); k != "" {
		if kind, ok := filter.ParseThreatKind(k); ok {
			name := kind.Name()
			opts.Primary = &name
		}
	}
	if u := c.Query("urgent"); u != "" {
		if urgent, err := strconv.ParseBool(u); err == nil {
			opts.Urgent = &urgent
		}
	}

	alerts, err := h.alerts.ListAlerts(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch alerts",
		})
		return
	}

	c.JSON(http.StatusOK, toAlertList(alerts))
}

func (h *Handler) getAlert(c *gin.Context) {
	alert, err := h.alerts.GetAlert(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alert"})
		return
	}
	c.JSON(http.StatusOK, toAlertResponse(*alert))
}

// streamAlerts pushes forwarded alerts as server-sent events until the
// client disconnects or the broadcaster closes.
func (h *Handler) streamAlerts(c *gin.Context) {
	id, alerts := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
		defer h.metrics.StreamClients.Dec()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case a, ok := <-alerts:
			if !ok {
				return false
			}
			c.SSEvent("alert", toAlertResponse(*a))
			return true
		}
	})
}

func (h *Handler) getSubscribers(c *gin.Context) {
	subs, err := h.subscribers.ListSubscribers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subscribers"})
		return
	}

	out := make([]SubscriberResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, SubscriberResponse{ChatID: s.ChatID, AddedAt: s.AddedAt})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "subscribers": out})
}

func (h *Handler) addSubscriber(c *gin.Context) {
	var req subscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.subscribers.AddSubscriber(c.Request.Context(), req.ChatID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add subscriber"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat_id": req.ChatID})
}

func (h *Handler) removeSubscriber(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	removed, err := h.subscribers.RemoveSubscriber(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove subscriber"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscriber not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// parseSince accepts RFC 3339 timestamps or plain dates.
func parseSince(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
