package wallet

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu           sync.RWMutex
	wallets      map[string]Wallet
	transactions map[string][]Transaction
	payments     map[string][]Payment
}

// NewMemoryStore constructs a concurrency-safe in-memory store. It backs the
// dev-mode server and unit tests.
func NewMemoryStore() Store {
	return &memoryStore{
		wallets:      make(map[string]Wallet),
		transactions: make(map[string][]Transaction),
		payments:     make(map[string][]Payment),
	}
}

func (s *memoryStore) GetWallet(_ context.Context, userID string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (s *memoryStore) PutWallet(_ context.Context, wallet Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.wallets[wallet.UserID]
	if exists && current.Version != wallet.Version-1 {
		return ErrVersionConflict
	}
	if !exists && wallet.Version != 1 {
		return ErrVersionConflict
	}
	s.wallets[wallet.UserID] = wallet
	return nil
}

func (s *memoryStore) AppendTransaction(_ context.Context, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// newest first
	s.transactions[txn.UserID] = append([]Transaction{txn}, s.transactions[txn.UserID]...)
	return nil
}

func (s *memoryStore) Transactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.transactions[userID]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	out := make([]Transaction, len(list))
	copy(out, list)
	return out, nil
}

func (s *memoryStore) AppendPayment(_ context.Context, payment Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[payment.UserID] = append([]Payment{payment}, s.payments[payment.UserID]...)
	return nil
}

func (s *memoryStore) Payments(_ context.Context, userID string) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.payments[userID]
	out := make([]Payment, len(list))
	copy(out, list)
	return out, nil
}
