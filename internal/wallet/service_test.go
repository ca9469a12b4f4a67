package wallet

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/athena-hd/athena-rewards/internal/logging"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), logging.Discard())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestInitializeDemoWallet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	w, err := svc.Initialize(ctx, "demo-001", "")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if w.Balance != 25000 {
		t.Fatalf("expected starting balance 25000, got %v", w.Balance)
	}
	if w.TotalEarned != 25000 || w.NetTokens != 25000 {
		t.Fatalf("expected totals 25000, got earned=%v net=%v", w.TotalEarned, w.NetTokens)
	}

	txns, err := svc.Transactions(ctx, "demo-001", 0)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 welcome transaction, got %d", len(txns))
	}
	if txns[0].Type != TypeEarn || txns[0].Amount != 25000 || txns[0].ServiceType != "welcome" {
		t.Fatalf("unexpected welcome transaction: %+v", txns[0])
	}
}

func TestInitializeCategories(t *testing.T) {
	cases := []struct {
		userID  string
		balance float64
	}{
		{"admin-7", 50000},
		{"premium-user", 50000},
		{"demo-42", 25000},
		{"alice", 10000},
		// substring sniffing is the fallback only; "academic" must not
		// accidentally land in a privileged bucket
		{"academic", 10000},
	}
	for _, tc := range cases {
		svc := newTestService()
		w, err := svc.Initialize(context.Background(), tc.userID, "")
		if err != nil {
			t.Fatalf("initialize %s: %v", tc.userID, err)
		}
		if w.Balance != tc.balance {
			t.Errorf("user %s: expected balance %v, got %v", tc.userID, tc.balance, w.Balance)
		}
	}
}

func TestInitializeExplicitCategoryWins(t *testing.T) {
	svc := newTestService()
	w, err := svc.Initialize(context.Background(), "demo-override", CategoryVIP)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if w.Balance != 50000 {
		t.Fatalf("expected explicit vip balance 50000, got %v", w.Balance)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Initialize(ctx, "user-1", CategoryStandard)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := svc.Earn(ctx, "user-1", 5, "bonus", "", nil); err != nil {
		t.Fatalf("earn: %v", err)
	}
	again, err := svc.Initialize(ctx, "user-1", CategoryVIP)
	if err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if again.Balance != first.Balance+5 {
		t.Fatalf("re-initialize clobbered wallet: %v", again.Balance)
	}
}

func TestEarnCreditsBalanceAndTotals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	w, _ := svc.Initialize(ctx, "user-1", CategoryStandard)

	txn, err := svc.Earn(ctx, "user-1", 150, "flight reward", "airline", nil)
	if err != nil {
		t.Fatalf("earn: %v", err)
	}
	if txn.Type != TypeEarn || txn.Amount != 150 {
		t.Fatalf("unexpected transaction: %+v", txn)
	}

	after, _ := svc.Get(ctx, "user-1")
	if after.Balance != w.Balance+150 {
		t.Fatalf("expected balance %v, got %v", w.Balance+150, after.Balance)
	}
	if after.TotalEarned != w.TotalEarned+150 {
		t.Fatalf("expected total earned %v, got %v", w.TotalEarned+150, after.TotalEarned)
	}

	txns, _ := svc.Transactions(ctx, "user-1", 0)
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[0].Type != TypeEarn || txns[0].Amount != 150 {
		t.Fatalf("newest transaction should be the earn: %+v", txns[0])
	}
}

func TestSpendWithinBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	w, _ := svc.Initialize(ctx, "user-1", CategoryStandard)

	txn, err := svc.Spend(ctx, "user-1", 400, "hotel booking", "resort", nil)
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if txn.Amount != -400 {
		t.Fatalf("spend transaction amount should be negative: %v", txn.Amount)
	}

	after, _ := svc.Get(ctx, "user-1")
	if after.Balance != w.Balance-400 {
		t.Fatalf("expected balance %v, got %v", w.Balance-400, after.Balance)
	}
	if after.TotalSpent != 400 {
		t.Fatalf("expected total spent 400, got %v", after.TotalSpent)
	}
}

func TestSpendInsufficientBalanceLeavesWalletUnchanged(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	w, _ := svc.Initialize(ctx, "demo-001", "")

	_, err := svc.Spend(ctx, "demo-001", 30000, "x", "", nil)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	after, _ := svc.Get(ctx, "demo-001")
	if after.Balance != w.Balance || after.TotalSpent != 0 {
		t.Fatalf("failed spend mutated wallet: balance=%v spent=%v", after.Balance, after.TotalSpent)
	}
	txns, _ := svc.Transactions(ctx, "demo-001", 0)
	if len(txns) != 1 {
		t.Fatalf("failed spend must not append a transaction, got %d", len(txns))
	}
}

func TestStakeUnstakeRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	w, _ := svc.Initialize(ctx, "user-1", CategoryStandard)

	const staked = 1000.0
	// reward uses the fixed 30-day window even though 90 days were requested
	if _, err := svc.Stake(ctx, "user-1", staked, 90); err != nil {
		t.Fatalf("stake: %v", err)
	}

	mid, _ := svc.Get(ctx, "user-1")
	if mid.Balance != w.Balance-staked {
		t.Fatalf("expected balance %v after stake, got %v", w.Balance-staked, mid.Balance)
	}
	if mid.LockedBalance != staked || mid.StakedAmount != staked {
		t.Fatalf("expected locked %v, got locked=%v staked=%v", staked, mid.LockedBalance, mid.StakedAmount)
	}

	txn, err := svc.Unstake(ctx, "user-1", staked)
	if err != nil {
		t.Fatalf("unstake: %v", err)
	}

	reward := staked * 0.12 / 365 * 30
	if !almostEqual(txn.Amount, staked+reward) {
		t.Fatalf("expected unstake amount %v, got %v", staked+reward, txn.Amount)
	}

	after, _ := svc.Get(ctx, "user-1")
	if !almostEqual(after.Balance, w.Balance+reward) {
		t.Fatalf("expected balance %v, got %v", w.Balance+reward, after.Balance)
	}
	if after.LockedBalance != 0 || after.StakedAmount != 0 {
		t.Fatalf("expected nothing locked, got locked=%v staked=%v", after.LockedBalance, after.StakedAmount)
	}
	if !almostEqual(after.StakingRewards, reward) {
		t.Fatalf("expected staking rewards %v, got %v", reward, after.StakingRewards)
	}
	if !almostEqual(after.TotalEarned, w.TotalEarned+reward) {
		t.Fatalf("expected total earned %v, got %v", w.TotalEarned+reward, after.TotalEarned)
	}
}

func TestUnstakeMoreThanLocked(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Initialize(ctx, "user-1", CategoryStandard)
	svc.Stake(ctx, "user-1", 100, 0)

	if _, err := svc.Unstake(ctx, "user-1", 200); !errors.Is(err, ErrInsufficientStake) {
		t.Fatalf("expected ErrInsufficientStake, got %v", err)
	}
}

func TestTransferDebitsSenderOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Initialize(ctx, "user-1", CategoryStandard)
	// bring balance down to a round figure
	if _, err := svc.Spend(ctx, "user-1", 9900, "drain", "", nil); err != nil {
		t.Fatalf("spend: %v", err)
	}

	txn, err := svc.Transfer(ctx, "user-1", 40, "user2", "gift")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if txn.Type != TypeTransfer || txn.Amount != -40 {
		t.Fatalf("unexpected transfer transaction: %+v", txn)
	}

	after, _ := svc.Get(ctx, "user-1")
	if after.Balance != 60 {
		t.Fatalf("expected balance 60, got %v", after.Balance)
	}
	if after.TotalSpent != 9940 {
		t.Fatalf("expected total spent 9940, got %v", after.TotalSpent)
	}

	// single-wallet simulation: no recipient wallet is created or credited
	if _, err := svc.store.GetWallet(ctx, "user2"); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("recipient wallet should not exist, got %v", err)
	}
}

func TestProcessPaymentRecordsPayment(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Initialize(ctx, "user-1", CategoryStandard)

	payment, err := svc.ProcessPayment(ctx, "user-1", 2500, "airline", "flight-88", "HAN-SGN")
	if err != nil {
		t.Fatalf("process payment: %v", err)
	}
	if payment.Status != StatusCompleted || payment.Amount != 2500 {
		t.Fatalf("unexpected payment: %+v", payment)
	}

	payments, _ := svc.Payments(ctx, "user-1")
	if len(payments) != 1 || payments[0].ID != payment.ID {
		t.Fatalf("payment log mismatch: %+v", payments)
	}

	txns, _ := svc.Transactions(ctx, "user-1", 1)
	if len(txns) != 1 || txns[0].Type != TypeSpend {
		t.Fatalf("expected spend transaction, got %+v", txns)
	}
	if txns[0].Metadata["payment_id"] != payment.ID {
		t.Fatalf("spend transaction should reference payment id, got %v", txns[0].Metadata)
	}
	if txns[0].ServiceReferenceID != "flight-88" {
		t.Fatalf("expected service reference flight-88, got %q", txns[0].ServiceReferenceID)
	}
}

func TestProcessPaymentInsufficientBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Initialize(ctx, "user-1", CategoryStandard)

	if _, err := svc.ProcessPayment(ctx, "user-1", 99999, "bank", "acct", "too big"); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	payments, _ := svc.Payments(ctx, "user-1")
	if len(payments) != 0 {
		t.Fatalf("failed payment must not be recorded, got %d", len(payments))
	}
}

func TestStatsAggregatesWalletAndTier(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Initialize(ctx, "user-1", CategoryStandard)
	svc.Stake(ctx, "user-1", 3000, 0)

	stats, err := svc.Stats(ctx, "user-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AvailableBalance != 7000 || stats.StakedAmount != 3000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalValue != 10000 {
		t.Fatalf("total value should include locked balance, got %v", stats.TotalValue)
	}
	// tier derives from lifetime earnings, not current balance
	if stats.MembershipTier.Name != "Diamond" {
		t.Fatalf("expected Diamond for 10000 earned, got %s", stats.MembershipTier.Name)
	}
}

func TestVersionConflictSurfaces(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, logging.Discard())
	ctx := context.Background()
	w, _ := svc.Initialize(ctx, "user-1", CategoryStandard)

	// a stale write loses the compare-and-swap
	stale := w
	stale.Balance += 1
	if err := store.PutWallet(ctx, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for stale version, got %v", err)
	}
}
