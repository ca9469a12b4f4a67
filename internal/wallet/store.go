package wallet

import (
	"context"
	"errors"
)

var (
	// ErrWalletNotFound indicates no wallet record exists for the user.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrCorruptWallet indicates the stored wallet record could not be
	// decoded. Service.Get resets the wallet when it sees this; the store
	// itself never hides it.
	ErrCorruptWallet = errors.New("wallet record corrupt")

	// ErrVersionConflict indicates a compare-and-swap write lost the race:
	// the stored version no longer matches the version the wallet was read
	// at.
	ErrVersionConflict = errors.New("wallet version conflict")
)

// Store is the persistence port for wallet state. Wallets, transactions and
// payments live in three separate namespaces; transaction and payment logs
// are append-only, newest first.
//
// PutWallet enforces optimistic concurrency: the write succeeds only when the
// stored version equals wallet.Version-1 (or the record is new and
// wallet.Version is 1); otherwise it returns ErrVersionConflict.
type Store interface {
	GetWallet(ctx context.Context, userID string) (Wallet, error)
	PutWallet(ctx context.Context, wallet Wallet) error
	AppendTransaction(ctx context.Context, txn Transaction) error
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	AppendPayment(ctx context.Context, payment Payment) error
	Payments(ctx context.Context, userID string) ([]Payment, error)
}
