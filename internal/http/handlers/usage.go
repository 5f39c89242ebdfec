package handlers

import (
	"errors"
	"net/http"
	"time"

	"study_webapp/internal/domain"
	"study_webapp/internal/http/middleware"
	"study_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type HeartbeatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Heartbeat drives the usage meter: the client pings while the user is
// active, whole elapsed minutes get committed, fractions carry forward.
// An unknown session id (first ping, or server restart) starts tracking.
func (h *Handler) Heartbeat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	now := time.Now()
	committed, err := h.Meter.Tick(c.Request.Context(), req.SessionID, now)
	if errors.Is(err, domain.ErrNotFound) {
		h.Meter.Start(req.SessionID, userID, now)
		c.JSON(http.StatusOK, gin.H{"committed_minutes": 0, "started": true})
		return
	}
	if err != nil {
		// elapsed time is not rolled back; the next heartbeat retries
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "usage commit failed"})
		return
	}

	if committed > 0 {
		middleware.MinutesCommitted.Add(float64(committed))
	}
	c.JSON(http.StatusOK, gin.H{"committed_minutes": committed})
}

type FlushRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// FlushSession commits outstanding minutes when the user navigates away or
// the page unloads.
func (h *Handler) FlushSession(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req FlushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	committed, err := h.Meter.Flush(c.Request.Context(), req.SessionID, time.Now())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "usage commit failed"})
		return
	}

	if committed > 0 {
		middleware.MinutesCommitted.Add(float64(committed))
	}
	c.JSON(http.StatusOK, gin.H{"committed_minutes": committed})
}

// Quota reports today's consumption against the caller's tier allowance.
func (h *Handler) Quota(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	tier := domain.TierOf(user.TotalEarned)
	c.JSON(http.StatusOK, service.QuotaFor(tier, user.DailyUsage))
}
