package handlers

import (
	"errors"
	"net/http"

	"study_webapp/internal/domain"
	"study_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Catalog returns every content group annotated with the caller's access
// and the crowd vote tallies.
func (h *Handler) Catalog(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	access, groups, err := h.Unlocks.Unlocked(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	var allLinks []string
	for _, g := range groups {
		allLinks = append(allLinks, g.LinkIDs...)
	}
	votes, err := h.Unlocks.Votes(ctx, allLinks)
	if err != nil {
		votes = map[string]domain.VoteRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"access": access,
		"votes":  votes,
	})
}

type PurchaseRequest struct {
	LinkID string `json:"link_id" binding:"required"`
}

// Purchase spends credits to unlock a link (or its whole group, depending
// on the group policy).
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link_id is required"})
		return
	}

	ctx := c.Request.Context()
	_, group, err := h.Unlocks.CanAccess(ctx, userID, req.LinkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown link"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve link"})
		return
	}

	result, err := h.Unlocks.Purchase(ctx, userID, *group, req.LinkID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyUnlocked):
			middleware.Purchases.WithLabelValues("already_unlocked").Inc()
			c.JSON(http.StatusConflict, gin.H{"error": "already unlocked"})
		case errors.Is(err, domain.ErrInsufficientBalance):
			middleware.Purchases.WithLabelValues("insufficient").Inc()
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough credits"})
		default:
			middleware.Purchases.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	middleware.Purchases.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, result)
}

type VoteRequest struct {
	LinkID string `json:"link_id" binding:"required"`
	Worked bool   `json:"worked"`
}

// Vote records a "did this link work" signal. Votes are deliberately not
// deduplicated.
func (h *Handler) Vote(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "link_id is required"})
		return
	}

	record, err := h.Unlocks.CastVote(c.Request.Context(), req.LinkID, req.Worked)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote failed"})
		return
	}

	c.JSON(http.StatusOK, record)
}
