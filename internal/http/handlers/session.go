package handlers

import (
	"context"
	"errors"
	"net/http"

	"study_webapp/internal/domain"
	"study_webapp/internal/http/middleware"
	"study_webapp/internal/logger"
	"study_webapp/internal/service"
	"study_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the frontend lives on a different origin in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ContentSession opens the live clock for one unlocked link. Browsers
// cannot set headers on websocket dials, so the token rides in the query.
// The session streams remaining quota once per second and force-closes
// when the daily cap is reached.
func (h *Handler) ContentSession(c *gin.Context) {
	token := c.Query("token")
	userID, err := service.ParseJWT(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	linkID := c.Query("link_id")
	if linkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link_id is required"})
		return
	}

	ctx := c.Request.Context()
	open, _, err := h.Unlocks.CanAccess(ctx, userID, linkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve link"})
		return
	}
	if !open {
		c.JSON(http.StatusForbidden, gin.H{"error": "link is locked"})
		return
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	tier := domain.TierOf(user.TotalEarned)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := &ws.Session{
		UserID:      userID,
		LinkID:      linkID,
		Tier:        tier,
		Conn:        conn,
		Meter:       h.Meter,
		Notify:      h.Notifications,
		OnForceStop: func() { middleware.QuotaForceStops.Inc() },
	}
	// the request context dies with this handler; the session outlives it
	// and commits on its own schedule
	session.Run(context.Background())
}
