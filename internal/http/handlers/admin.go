package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CloseWeek runs the weekly cycle: pays top-10 rewards and zeroes
// week_minutes for everyone. Admin only. The report goes back to the
// operator verbatim, including any reward grants that failed.
func (h *Handler) CloseWeek(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok || !h.isAdmin(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}

	report, err := h.Leaderboard.CloseWeek(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		// partial progress still goes to the operator
		c.JSON(status, gin.H{"error": "weekly close failed", "report": report})
		return
	}

	c.JSON(http.StatusOK, report)
}
