package handlers

import (
	"net/http"
	"time"

	"study_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the weekly standings with each rank's potential
// reward and the countdown to the next reset.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	top, err := h.Leaderboard.TopN(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	type entry struct {
		Rank            int    `json:"rank"`
		UserID          int64  `json:"user_id"`
		Username        string `json:"username"`
		WeekMinutes     int64  `json:"week_minutes"`
		PotentialReward int64  `json:"potential_reward"`
	}

	entries := make([]entry, 0, len(top))
	for _, e := range top {
		entries = append(entries, entry{
			Rank:            e.Rank,
			UserID:          e.UserID,
			Username:        e.Username,
			WeekMinutes:     e.WeekMinutes,
			PotentialReward: service.PotentialReward(e.Rank),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"period":      "weekly",
		"resets_in":   service.TimeUntilReset(time.Now()),
	})
}

// GetResetCountdown returns only the countdown, for the header widget.
func (h *Handler) GetResetCountdown(c *gin.Context) {
	c.JSON(http.StatusOK, service.TimeUntilReset(time.Now()))
}
