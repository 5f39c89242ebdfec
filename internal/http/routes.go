package http

import (
	"time"

	"study_webapp/internal/config"
	"study_webapp/internal/http/handlers"
	"study_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) *handlers.Handler {
	h := handlers.NewHandler(db, handlers.HandlerConfig{
		ReferrerBonus: cfg.ReferrerBonus,
		WelcomeBonus:  cfg.WelcomeBonus,
		AdminUserIDs:  cfg.AdminUserIDs,
	})
	healthHandler := handlers.NewHealthHandler(db, version)

	apiRateWindow := time.Duration(cfg.APIRateWindowSecs) * time.Second
	actionRateWindow := time.Duration(cfg.ActionRateWindowSecs) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Readiness)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api/v1")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))

	// Identity
	api.POST("/signup", h.SignUp)
	api.POST("/signin", h.SignIn)
	api.DELETE("/account", middleware.JWT(), h.DeleteAccount)

	// Profile: tier, progress, quota, journal
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/ledger", middleware.JWT(), h.MyLedger)
	api.GET("/me/quota", middleware.JWT(), h.Quota)

	// Usage meter
	api.POST("/usage/heartbeat", middleware.JWT(), h.Heartbeat)
	api.POST("/usage/flush", middleware.JWT(), h.FlushSession)

	// Per-user limit on mutating engine calls
	actionRL := middleware.UserRateLimit(cfg.ActionRateLimit, actionRateWindow)

	// Catalog, purchases, votes
	api.GET("/catalog", middleware.JWT(), h.Catalog)
	api.POST("/catalog/purchase", middleware.JWT(), actionRL, h.Purchase)
	api.POST("/catalog/vote", middleware.JWT(), actionRL, h.Vote)

	// Timed tasks
	api.GET("/tasks", middleware.JWT(), h.ListTasks)
	api.POST("/tasks", middleware.JWT(), h.CreateTask)
	api.PATCH("/tasks/:id/complete", middleware.JWT(), actionRL, h.CompleteTask)

	// Referrals
	referral := api.Group("/referral")
	referral.Use(middleware.JWT())
	{
		referral.GET("/code", h.GetReferralCode)
		referral.GET("/stats", h.GetReferralStats)
	}

	// Weekly leaderboard
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/leaderboard/countdown", h.GetResetCountdown)

	// Notifications
	api.GET("/notifications", middleware.JWT(), h.ListNotifications)
	api.PATCH("/notifications/:id/read", middleware.JWT(), h.MarkNotificationRead)

	// Administration
	api.POST("/admin/close-week", middleware.JWT(), h.CloseWeek)

	// Live content-session clock (token in query, see handler)
	r.GET("/ws/session", h.ContentSession)

	return h
}
