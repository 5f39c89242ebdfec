package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"study_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type CreateTaskRequest struct {
	Title           string `json:"title" binding:"required"`
	DurationMinutes int64  `json:"duration_minutes" binding:"required,min=1"`
	RewardCredits   int64  `json:"reward_credits" binding:"min=0"`
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task payload"})
		return
	}

	task := &domain.StudyTask{
		UserID:          userID,
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		RewardCredits:   req.RewardCredits,
	}
	if err := h.Tasks.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// CompleteTask finishes a timed task and pays its credit reward exactly
// once.
func (h *Handler) CompleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, newBalance, err := h.Tasks.Complete(c.Request.Context(), userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete task"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task, "new_balance": newBalance})
}
