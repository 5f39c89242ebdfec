package repository

import (
	"context"
	"errors"

	"study_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, username, credits, total_earned, total_minutes, week_minutes,
	 CASE WHEN usage_day = CURRENT_DATE THEN daily_usage_secs ELSE 0 END,
	 usage_day, referral_code, referred_by, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Credits,
		&u.TotalEarned,
		&u.TotalMinutes,
		&u.WeekMinutes,
		&u.DailyUsage,
		&u.UsageDay,
		&u.ReferralCode,
		&u.ReferredBy,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account with zeroed counters. Returns ErrEmailTaken
// on a duplicate email and pgx's unique-violation error on a referral code
// collision so the caller can retry with a fresh code.
func (r *UserRepository) Create(ctx context.Context, u *domain.User, passwordHash string) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, referral_code)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Email, u.Username, passwordHash, u.ReferralCode,
	).Scan(&u.ID, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_key" {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetPasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrUserNotFound
	}
	return hash, err
}

// Delete removes the account and, through cascades, its unlocks, referrals,
// ledger entries and notifications. Irreversible.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddMinutes commits whole tracked minutes to the lifetime and weekly
// counters in one atomic delta.
func (r *UserRepository) AddMinutes(ctx context.Context, userID int64, minutes int64) error {
	res, err := r.db.Exec(ctx,
		`UPDATE users
		 SET total_minutes = total_minutes + $1,
		     week_minutes = week_minutes + $1
		 WHERE id = $2`,
		minutes, userID,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddDailyUsage adds seconds of gated-content consumption to today's
// counter. The counter rolls to zero on the first write of a new calendar
// day; the rollover and the increment are a single statement so concurrent
// sessions cannot lose either.
func (r *UserRepository) AddDailyUsage(ctx context.Context, userID int64, seconds int64) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET daily_usage_secs = CASE WHEN usage_day = CURRENT_DATE THEN daily_usage_secs + $1 ELSE $1 END,
		     usage_day = CURRENT_DATE
		 WHERE id = $2
		 RETURNING daily_usage_secs`,
		seconds, userID,
	).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	return total, err
}

// GetDailyUsage returns today's consumed seconds, treating a stale
// usage_day as zero.
func (r *UserRepository) GetDailyUsage(ctx context.Context, userID int64) (int64, error) {
	var secs int64
	err := r.db.QueryRow(ctx,
		`SELECT CASE WHEN usage_day = CURRENT_DATE THEN daily_usage_secs ELSE 0 END
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&secs)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	return secs, err
}

// WeekRank is one leaderboard row.
type WeekRank struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	WeekMinutes int64  `json:"week_minutes"`
}

// WeeklyTop returns users with tracked minutes this window, most active
// first. Ties break by account id, which keeps the order stable.
func (r *UserRepository) WeeklyTop(ctx context.Context, limit int) ([]WeekRank, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, week_minutes
		 FROM users
		 WHERE week_minutes > 0
		 ORDER BY week_minutes DESC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []WeekRank
	rank := 1
	for rows.Next() {
		var e WeekRank
		if err := rows.Scan(&e.UserID, &e.Username, &e.WeekMinutes); err != nil {
			return nil, err
		}
		e.Rank = rank
		res = append(res, e)
		rank++
	}
	return res, rows.Err()
}

// ResetWeekMinutes zeroes week_minutes for every account and reports how
// many rows changed. A single UPDATE, so the reset is all-or-nothing.
func (r *UserRepository) ResetWeekMinutes(ctx context.Context) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE users SET week_minutes = 0 WHERE week_minutes > 0`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
