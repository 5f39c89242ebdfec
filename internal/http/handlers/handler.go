package handlers

import (
	"study_webapp/internal/repository"
	"study_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HandlerConfig carries tunables the handlers need.
type HandlerConfig struct {
	ReferrerBonus int64
	WelcomeBonus  int64
	AdminUserIDs  []int64
}

type Handler struct {
	DB            *pgxpool.Pool
	Users         *repository.UserRepository
	Notifications *repository.NotificationRepository
	Ledger        *service.CreditLedger
	Meter         *service.Meter
	Unlocks       *service.UnlockEngine
	Leaderboard   *service.LeaderboardCycle
	Referrals     *service.ReferralEngine
	Auth          *service.AuthService
	Tasks         *service.TaskService

	adminIDs map[int64]bool
}

func NewHandler(db *pgxpool.Pool, cfg HandlerConfig) *Handler {
	users := repository.NewUserRepository(db)
	ledger := service.NewCreditLedger(db)
	referrals := service.NewReferralEngine(db, ledger, cfg.ReferrerBonus, cfg.WelcomeBonus)

	admins := make(map[int64]bool, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		admins[id] = true
	}

	return &Handler{
		DB:            db,
		Users:         users,
		Notifications: repository.NewNotificationRepository(db),
		Ledger:        ledger,
		Meter:         service.NewMeter(users),
		Unlocks:       service.NewUnlockEngine(db, ledger),
		Leaderboard:   service.NewLeaderboardCycle(db, ledger),
		Referrals:     referrals,
		Auth:          service.NewAuthService(db, referrals),
		Tasks:         service.NewTaskService(db, ledger),
		adminIDs:      admins,
	}
}

func (h *Handler) isAdmin(userID int64) bool {
	return h.adminIDs[userID]
}

// getUserID pulls the authenticated user id from the gin context.
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
