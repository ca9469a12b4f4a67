package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientBalance occurs when a debit exceeds the spendable balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientStake occurs when an unstake exceeds the locked balance.
	ErrInsufficientStake = errors.New("insufficient staked amount")
)

const (
	stakingAPY = 0.12

	// Unstake rewards are always computed over a 30-day window, regardless
	// of the duration requested at stake time. The behavior is intentional
	// for compatibility with the original reward schedule.
	rewardWindowDays = 30

	defaultStakeDays = 30
)

// Starting balances per user category.
const (
	startingBalanceVIP      = 50000
	startingBalanceDemo     = 25000
	startingBalanceStandard = 10000
)

// Service owns all wallet mutations. Every mutation for a user is serialized
// through a per-user lock and written with a compare-and-swap on the wallet
// version, so two writers can never both pass a sufficiency check against the
// same snapshot.
type Service struct {
	store  Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds a wallet service on top of the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, locks: make(map[string]*sync.Mutex)}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// CategoryFromUserID derives a user category from identifier substrings.
// Callers that know the real category should pass it explicitly instead of
// relying on this heuristic.
func CategoryFromUserID(userID string) UserCategory {
	id := strings.ToLower(userID)
	switch {
	case strings.Contains(id, "admin") || strings.Contains(id, "premium"):
		return CategoryVIP
	case strings.Contains(id, "demo"):
		return CategoryDemo
	default:
		return CategoryStandard
	}
}

func startingBalance(category UserCategory) float64 {
	switch category {
	case CategoryVIP:
		return startingBalanceVIP
	case CategoryDemo:
		return startingBalanceDemo
	default:
		return startingBalanceStandard
	}
}

// Initialize provisions a wallet with the category's starting balance and a
// welcome transaction. Re-initializing an existing wallet is a no-op that
// returns the current record.
func (s *Service) Initialize(ctx context.Context, userID string, category UserCategory) (Wallet, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if existing, err := s.store.GetWallet(ctx, userID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrWalletNotFound) && !errors.Is(err, ErrCorruptWallet) {
		return Wallet{}, err
	}

	if category == "" {
		category = CategoryFromUserID(userID)
	}
	return s.provision(ctx, userID, category)
}

// provision writes a fresh wallet and its welcome transaction. Callers must
// hold the user lock.
func (s *Service) provision(ctx context.Context, userID string, category UserCategory) (Wallet, error) {
	amount := startingBalance(category)
	now := time.Now().UTC()
	w := Wallet{
		UserID:      userID,
		Balance:     amount,
		TotalEarned: amount,
		NetTokens:   amount,
		Version:     1,
		LastUpdated: now,
	}

	if err := s.store.PutWallet(ctx, w); err != nil {
		return Wallet{}, err
	}

	txn := newTransaction(userID, TypeEarn, amount, "Welcome bonus", "welcome", map[string]any{
		"category": string(category),
	})
	if err := s.store.AppendTransaction(ctx, txn); err != nil {
		return Wallet{}, err
	}

	return w, nil
}

// Get returns the user's wallet, provisioning one when absent. A corrupt
// stored record is reset to a fresh wallet; the data loss is logged rather
// than hidden.
func (s *Service) Get(ctx context.Context, userID string) (Wallet, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.getOrProvision(ctx, userID)
}

// getOrProvision implements the reset-on-corruption read path. Callers must
// hold the user lock.
func (s *Service) getOrProvision(ctx context.Context, userID string) (Wallet, error) {
	w, err := s.store.GetWallet(ctx, userID)
	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, ErrCorruptWallet):
		s.logger.Warn("wallet record corrupt, resetting", "user_id", userID, "error", err)
		return s.provision(ctx, userID, CategoryFromUserID(userID))
	case errors.Is(err, ErrWalletNotFound):
		return s.provision(ctx, userID, CategoryFromUserID(userID))
	default:
		return Wallet{}, err
	}
}

// mutate runs fn against the current wallet under the user lock and persists
// the result with a version bump. fn returns the transaction to append; the
// wallet is left untouched when fn fails.
func (s *Service) mutate(ctx context.Context, userID string, fn func(w *Wallet) (Transaction, error)) (Transaction, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.getOrProvision(ctx, userID)
	if err != nil {
		return Transaction{}, err
	}

	txn, err := fn(&w)
	if err != nil {
		return Transaction{}, err
	}

	w.Version++
	w.LastUpdated = time.Now().UTC()
	if err := s.store.PutWallet(ctx, w); err != nil {
		return Transaction{}, err
	}
	if err := s.store.AppendTransaction(ctx, txn); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// Earn credits tokens to the spendable balance. Amounts are trusted from the
// caller; the HTTP boundary validates them.
func (s *Service) Earn(ctx context.Context, userID string, amount float64, description, serviceType string, metadata map[string]any) (Transaction, error) {
	return s.mutate(ctx, userID, func(w *Wallet) (Transaction, error) {
		w.Balance += amount
		w.TotalEarned += amount
		w.NetTokens += amount
		return newTransaction(userID, TypeEarn, amount, description, serviceType, metadata), nil
	})
}

// Spend debits tokens from the spendable balance. It fails without mutating
// anything when the balance cannot cover the amount.
func (s *Service) Spend(ctx context.Context, userID string, amount float64, description, serviceType string, metadata map[string]any) (Transaction, error) {
	return s.mutate(ctx, userID, func(w *Wallet) (Transaction, error) {
		if w.Balance < amount {
			return Transaction{}, fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientBalance, w.Balance, amount)
		}
		w.Balance -= amount
		w.TotalSpent += amount
		w.NetTokens -= amount
		return newTransaction(userID, TypeSpend, -amount, description, serviceType, metadata), nil
	})
}

// ProcessPayment is a spend that also materializes a Payment record for
// service checkout. The spend transaction references the payment id.
func (s *Service) ProcessPayment(ctx context.Context, userID string, amount float64, serviceType, serviceID, description string) (Payment, error) {
	now := time.Now().UTC()
	payment := Payment{
		ID:          "pay_" + uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		ServiceType: serviceType,
		ServiceID:   serviceID,
		Description: description,
		Status:      StatusCompleted,
		CreatedAt:   now,
		CompletedAt: now,
	}

	_, err := s.mutate(ctx, userID, func(w *Wallet) (Transaction, error) {
		if w.Balance < amount {
			return Transaction{}, fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientBalance, w.Balance, amount)
		}
		w.Balance -= amount
		w.TotalSpent += amount
		w.NetTokens -= amount
		txn := newTransaction(userID, TypeSpend, -amount, description, serviceType, map[string]any{
			"payment_id": payment.ID,
		})
		txn.ServiceReferenceID = serviceID
		return txn, nil
	})
	if err != nil {
		return Payment{}, err
	}

	if err := s.store.AppendPayment(ctx, payment); err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// Stake moves tokens from the spendable balance into the locked balance. The
// projected reward for the requested duration is recorded in metadata only;
// nothing is credited until unstake.
func (s *Service) Stake(ctx context.Context, userID string, amount float64, durationDays int) (Transaction, error) {
	if durationDays <= 0 {
		durationDays = defaultStakeDays
	}
	return s.mutate(ctx, userID, func(w *Wallet) (Transaction, error) {
		if w.Balance < amount {
			return Transaction{}, fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientBalance, w.Balance, amount)
		}
		w.Balance -= amount
		w.LockedBalance += amount
		w.StakedAmount += amount
		projected := amount * stakingAPY / 365 * float64(durationDays)
		return newTransaction(userID, TypeStake, -amount, fmt.Sprintf("Stake %d days", durationDays), "", map[string]any{
			"duration_days":    durationDays,
			"projected_reward": projected,
		}), nil
	})
}

// Unstake releases tokens from the locked balance and pays the reward for the
// fixed 30-day window.
func (s *Service) Unstake(ctx context.Context, userID string, amount float64) (Transaction, error) {
	return s.mutate(ctx, userID, func(w *Wallet) (Transaction, error) {
		if w.LockedBalance < amount {
			return Transaction{}, fmt.Errorf("%w: locked %.2f, required %.2f", ErrInsufficientStake, w.LockedBalance, amount)
		}
		reward := amount * stakingAPY / 365 * rewardWindowDays
		w.Balance += amount + reward
		w.LockedBalance -= amount
		w.StakedAmount -= amount
		w.TotalEarned += reward
		w.NetTokens += reward
		w.StakingRewards += reward
		return newTransaction(userID, TypeUnstake, amount+reward, "Unstake", "", map[string]any{
			"reward": reward,
		}), nil
	})
}

// Transfer debits the sender. No recipient wallet is credited: transfers are
// a single-wallet simulation, the recipient exists only in metadata.
func (s *Service) Transfer(ctx context.Context, userID string, amount float64, recipientID, description string) (Transaction, error) {
	return s.mutate(ctx, userID, func(w *Wallet) (Transaction, error) {
		if w.Balance < amount {
			return Transaction{}, fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientBalance, w.Balance, amount)
		}
		w.Balance -= amount
		w.TotalSpent += amount
		w.NetTokens -= amount
		return newTransaction(userID, TypeTransfer, -amount, description, "", map[string]any{
			"recipient_id": recipientID,
		}), nil
	})
}

// Stats aggregates wallet fields with the derived membership tier. Tier
// progression is keyed to lifetime earned tokens.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	w, err := s.Get(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalValue:       w.Balance + w.LockedBalance,
		AvailableBalance: w.Balance,
		StakedAmount:     w.StakedAmount,
		TotalEarned:      w.TotalEarned,
		TotalSpent:       w.TotalSpent,
		NetGrowth:        w.NetTokens,
		MembershipTier:   TierFor(w.TotalEarned),
	}, nil
}

// Transactions returns the user's ledger log, newest first.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	return s.store.Transactions(ctx, userID, limit)
}

// Payments returns the user's payment log, newest first.
func (s *Service) Payments(ctx context.Context, userID string) ([]Payment, error) {
	return s.store.Payments(ctx, userID)
}

func newTransaction(userID, txnType string, amount float64, description, serviceType string, metadata map[string]any) Transaction {
	now := time.Now().UTC()
	return Transaction{
		ID:          "txn_" + uuid.NewString(),
		UserID:      userID,
		Type:        txnType,
		Amount:      amount,
		Description: description,
		ServiceType: serviceType,
		Status:      StatusCompleted,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
