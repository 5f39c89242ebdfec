package handlers

import (
	"net/http"

	"study_webapp/internal/domain"
	"study_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Me returns the account with its derived tier, progress toward the next
// tier and today's quota status, everything the profile screen renders.
func (h *Handler) Me(c *gin.Context) {
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
	progress := domain.ProgressToNext(user.TotalEarned)
	quota := service.QuotaFor(tier, user.DailyUsage)

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"tier":     tier,
		"progress": progress,
		"quota":    quota,
	})
}

// MyLedger returns the credit journal.
func (h *Handler) MyLedger(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, err := h.Ledger.GetHistory(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
