package service

import (
	"context"
	"errors"

	"study_webapp/internal/domain"
	"study_webapp/internal/logger"
	"study_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the identity provider: email/password accounts, session
// tokens and terminal account deletion.
type AuthService struct {
	users     *repository.UserRepository
	referrals *ReferralEngine
}

func NewAuthService(db *pgxpool.Pool, referrals *ReferralEngine) *AuthService {
	return &AuthService{
		users:     repository.NewUserRepository(db),
		referrals: referrals,
	}
}

// SignUp creates an account with zeroed counters and a fresh referral code,
// then attributes the optional referral code of whoever invited them.
// Attribution happens here and only here: a code typed later has no effect.
func (s *AuthService) SignUp(ctx context.Context, email, username, password, referredByCode string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Email: email, Username: username}

	// retry on the unlikely referral-code collision
	for attempt := 0; attempt < 5; attempt++ {
		u.ReferralCode = GenerateReferralCode()
		err = s.users.Create(ctx, u, string(hash))
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	// Referral attribution is a separate commit; a failure here must not
	// undo the signup.
	if err := s.referrals.Attribute(ctx, u.ID, referredByCode); err != nil {
		logger.Error("referral attribution failed", "user", u.ID, "error", err)
	}

	return s.users.GetByID(ctx, u.ID)
}

// SignIn verifies the password and returns a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	hash, err := s.users.GetPasswordHash(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", nil, domain.ErrUserNotFound
	}

	token, err := GenerateJWT(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// DeleteAccount removes the account and everything hanging off it. The
// caller must present the current password as fresh proof; without it the
// operation fails with ErrReauthRequired and the user re-authenticates and
// retries.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return domain.ErrReauthRequired
	}

	hash, err := s.users.GetPasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrReauthRequired
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Info("account deleted", "user", userID)
	return nil
}
