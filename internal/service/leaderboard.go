package service

import (
	"context"
	"fmt"
	"time"

	"study_webapp/internal/domain"
	"study_webapp/internal/logger"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// rewardedRanks caps the weekly payout schedule: rank 1 gets 100 credits,
// rank 10 gets 10, everyone below gets nothing.
const rewardedRanks = 10

// PotentialReward returns the weekly payout for a leaderboard rank.
func PotentialReward(rank int) int64 {
	if rank < 1 || rank > rewardedRanks {
		return 0
	}
	return int64(110 - rank*10)
}

// Countdown is the time remaining until the next weekly reset.
type Countdown struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
	Mins  int `json:"mins"`
}

// TimeUntilReset returns the countdown to the next Sunday 00:00 local time,
// strictly in the future: exactly at Sunday midnight the answer is a full
// seven days, not zero. The split is computed from wall-clock components,
// not the absolute duration, so a DST transition between now and the target
// does not skew the displayed days and hours.
func TimeUntilReset(now time.Time) Countdown {
	days := (7 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}

	hour, min, sec := now.Clock()
	if hour == 0 && min == 0 && sec == 0 {
		return Countdown{Days: days}
	}

	toMidnight := 24*3600 - (hour*3600 + min*60 + sec)
	return Countdown{
		Days:  days - 1,
		Hours: toMidnight / 3600,
		Mins:  toMidnight % 3600 / 60,
	}
}

// LeaderboardCycle runs the weekly ranking window: standings during the
// week, rewards and the counter reset at its close.
type LeaderboardCycle struct {
	users  *repository.UserRepository
	notify *repository.NotificationRepository
	ledger *CreditLedger
}

func NewLeaderboardCycle(db *pgxpool.Pool, ledger *CreditLedger) *LeaderboardCycle {
	return &LeaderboardCycle{
		users:  repository.NewUserRepository(db),
		notify: repository.NewNotificationRepository(db),
		ledger: ledger,
	}
}

// TopN returns the current standings: users with tracked minutes this
// window, most active first.
func (s *LeaderboardCycle) TopN(ctx context.Context, n int) ([]repository.WeekRank, error) {
	return s.users.WeeklyTop(ctx, n)
}

// CloseWeekReport is returned to the operator. Reward failures are listed
// rather than retried; the reset count shows whether the bulk zeroing ran.
type CloseWeekReport struct {
	RewardedUsers  int      `json:"rewarded_users"`
	ResetAccounts  int64    `json:"reset_accounts"`
	RewardFailures []string `json:"reward_failures,omitempty"`
}

// CloseWeek pays the top finishers their scheduled reward, then zeroes
// week_minutes for all accounts. total_minutes is untouched. The reset is a
// single statement; reward grants are independent earns, and any that fail
// are reported to the operator.
func (s *LeaderboardCycle) CloseWeek(ctx context.Context) (*CloseWeekReport, error) {
	top, err := s.users.WeeklyTop(ctx, rewardedRanks)
	if err != nil {
		return nil, err
	}

	report := &CloseWeekReport{}
	for _, entry := range top {
		reward := PotentialReward(entry.Rank)
		if reward == 0 {
			continue
		}
		_, err := s.ledger.Earn(ctx, entry.UserID, reward, domain.TxWeekReward,
			map[string]any{"rank": entry.Rank, "week_minutes": entry.WeekMinutes})
		if err != nil {
			logger.Error("week reward grant failed", "user", entry.UserID, "rank", entry.Rank, "error", err)
			report.RewardFailures = append(report.RewardFailures,
				fmt.Sprintf("user %d rank %d: %v", entry.UserID, entry.Rank, err))
			continue
		}
		report.RewardedUsers++

		n := &domain.Notification{
			UserID: entry.UserID,
			Kind:   domain.NotifyWeekReward,
			Body:   fmt.Sprintf("You finished #%d this week and earned %d credits!", entry.Rank, reward),
		}
		if err := s.notify.Create(ctx, n); err != nil {
			logger.Warn("week reward notification failed", "user", entry.UserID, "error", err)
		}
	}

	reset, err := s.users.ResetWeekMinutes(ctx)
	if err != nil {
		return report, err
	}
	report.ResetAccounts = reset

	logger.Info("weekly cycle closed", "rewarded", report.RewardedUsers, "reset", reset)
	return report, nil
}
