package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"study_webapp/internal/domain"
	"study_webapp/internal/repository"
	"study_webapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connectDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

func createUser(t *testing.T, users *repository.UserRepository) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        fmt.Sprintf("it-%d@example.com", time.Now().UnixNano()),
		Username:     "it-user",
		ReferralCode: service.GenerateReferralCode(),
	}
	if err := users.Create(context.Background(), u, "x"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreditLedger_EarnSpend(t *testing.T) {
	db := connectDB(t)
	users := repository.NewUserRepository(db)
	ledger := service.NewCreditLedger(db)

	u := createUser(t, users)
	ctx := context.Background()

	bal, err := ledger.Earn(ctx, u.ID, 100, domain.TxTaskReward, nil)
	if err != nil {
		t.Fatalf("earn: %v", err)
	}
	if bal != 100 {
		t.Fatalf("balance after earn = %d, want 100", bal)
	}

	bal, err = ledger.Spend(ctx, u.ID, 40, domain.TxUnlockPurchase, nil)
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if bal != 60 {
		t.Fatalf("balance after spend = %d, want 60", bal)
	}

	// overdraft must be rejected without touching the balance
	if _, err := ledger.Spend(ctx, u.ID, 1000, domain.TxUnlockPurchase, nil); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("overdraft err = %v, want ErrInsufficientBalance", err)
	}
	got, err := ledger.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got != 60 {
		t.Fatalf("balance after failed spend = %d, want 60", got)
	}

	// tier progress tracks lifetime earnings, not the spendable balance
	fresh, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if fresh.TotalEarned != 100 {
		t.Fatalf("total earned = %d, want 100", fresh.TotalEarned)
	}

	entries, err := ledger.GetHistory(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(entries))
	}
}

func TestUnlockEngine_PurchaseRoundTrip(t *testing.T) {
	db := connectDB(t)
	users := repository.NewUserRepository(db)
	ledger := service.NewCreditLedger(db)
	catalog := repository.NewCatalogRepository(db)
	engine := service.NewUnlockEngine(db, ledger)

	ctx := context.Background()
	group := domain.ContentGroup{
		ID:      fmt.Sprintf("it-group-%d", time.Now().UnixNano()),
		Name:    "Integration Pack",
		Cost:    30,
		Policy:  domain.UnlockWholeGroup,
		LinkIDs: []string{"it-link-a-" + t.Name(), "it-link-b-" + t.Name()},
	}
	if err := catalog.SeedGroup(ctx, group); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	u := createUser(t, users)
	if _, err := ledger.Earn(ctx, u.ID, 50, domain.TxTaskReward, nil); err != nil {
		t.Fatalf("earn: %v", err)
	}

	res, err := engine.Purchase(ctx, u.ID, group, group.LinkIDs[0])
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if res.NewBalance != 20 {
		t.Fatalf("balance after purchase = %d, want 20", res.NewBalance)
	}
	if res.ItemKey != group.ID {
		t.Fatalf("whole_group purchase recorded key %q, want group id %q", res.ItemKey, group.ID)
	}

	// whole-group policy opens the sibling link too
	open, _, err := engine.CanAccess(ctx, u.ID, group.LinkIDs[1])
	if err != nil {
		t.Fatalf("can access: %v", err)
	}
	if !open {
		t.Fatal("sibling link should be unlocked under whole_group policy")
	}

	// buying again is rejected before any charge
	if _, err := engine.Purchase(ctx, u.ID, group, group.LinkIDs[0]); !errors.Is(err, domain.ErrAlreadyUnlocked) {
		t.Fatalf("repeat purchase err = %v, want ErrAlreadyUnlocked", err)
	}
	bal, err := ledger.GetBalance(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if bal != 20 {
		t.Fatalf("balance after repeat purchase = %d, want 20", bal)
	}
}

func TestReferralEngine_Attribute(t *testing.T) {
	db := connectDB(t)
	users := repository.NewUserRepository(db)
	ledger := service.NewCreditLedger(db)
	engine := service.NewReferralEngine(db, ledger, 50, 20)

	ctx := context.Background()
	referrer := createUser(t, users)
	referee := createUser(t, users)

	if err := engine.Attribute(ctx, referee.ID, referrer.ReferralCode); err != nil {
		t.Fatalf("attribute: %v", err)
	}

	refBal, err := ledger.GetBalance(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("referrer balance: %v", err)
	}
	if refBal != 50 {
		t.Fatalf("referrer balance = %d, want 50", refBal)
	}
	newBal, err := ledger.GetBalance(ctx, referee.ID)
	if err != nil {
		t.Fatalf("referee balance: %v", err)
	}
	if newBal != 20 {
		t.Fatalf("referee balance = %d, want 20", newBal)
	}

	// second attribution for the same referee must not pay again
	other := createUser(t, users)
	_ = engine.Attribute(ctx, referee.ID, other.ReferralCode)
	otherBal, err := ledger.GetBalance(ctx, other.ID)
	if err != nil {
		t.Fatalf("other balance: %v", err)
	}
	if otherBal != 0 {
		t.Fatalf("second referrer was paid %d for an already-attributed user", otherBal)
	}
}

func TestMeter_DailyUsageCommit(t *testing.T) {
	db := connectDB(t)
	users := repository.NewUserRepository(db)
	meter := service.NewMeter(users)

	ctx := context.Background()
	u := createUser(t, users)

	total, err := meter.CommitContentSeconds(ctx, u.ID, 90)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if total != 90 {
		t.Fatalf("daily usage = %d, want 90", total)
	}

	total, err = meter.CommitContentSeconds(ctx, u.ID, 30)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if total != 120 {
		t.Fatalf("daily usage = %d, want 120", total)
	}
}
