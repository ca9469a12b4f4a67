package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists wallet state in PostgreSQL. The wallet row carries a
// version column checked by every UPDATE, so concurrent writers cannot
// silently double-spend.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by the provided pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the wallet tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS wallets (
            user_id         TEXT PRIMARY KEY,
            balance         DOUBLE PRECISION NOT NULL DEFAULT 0,
            locked_balance  DOUBLE PRECISION NOT NULL DEFAULT 0,
            total_earned    DOUBLE PRECISION NOT NULL DEFAULT 0,
            total_spent     DOUBLE PRECISION NOT NULL DEFAULT 0,
            net_tokens      DOUBLE PRECISION NOT NULL DEFAULT 0,
            staked_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
            staking_rewards DOUBLE PRECISION NOT NULL DEFAULT 0,
            version         BIGINT NOT NULL DEFAULT 1,
            last_updated    TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS wallet_transactions (
            id                   TEXT PRIMARY KEY,
            user_id              TEXT NOT NULL,
            type                 TEXT NOT NULL,
            amount               DOUBLE PRECISION NOT NULL,
            description          TEXT NOT NULL DEFAULT '',
            service_type         TEXT NOT NULL DEFAULT '',
            service_reference_id TEXT NOT NULL DEFAULT '',
            status               TEXT NOT NULL,
            metadata             JSONB,
            created_at           TIMESTAMPTZ NOT NULL,
            updated_at           TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS wallet_transactions_user_created
            ON wallet_transactions (user_id, created_at DESC);
        CREATE TABLE IF NOT EXISTS wallet_payments (
            id           TEXT PRIMARY KEY,
            user_id      TEXT NOT NULL,
            amount       DOUBLE PRECISION NOT NULL,
            service_type TEXT NOT NULL,
            service_id   TEXT NOT NULL,
            description  TEXT NOT NULL DEFAULT '',
            status       TEXT NOT NULL,
            created_at   TIMESTAMPTZ NOT NULL,
            completed_at TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS wallet_payments_user_created
            ON wallet_payments (user_id, created_at DESC);`
	_, err := s.db.Exec(ctx, ddl)
	return err
}

func (s *PostgresStore) GetWallet(ctx context.Context, userID string) (Wallet, error) {
	const query = `SELECT user_id, balance, locked_balance, total_earned, total_spent,
            net_tokens, staked_amount, staking_rewards, version, last_updated
        FROM wallets WHERE user_id = $1`
	var w Wallet
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.Balance, &w.LockedBalance, &w.TotalEarned, &w.TotalSpent,
		&w.NetTokens, &w.StakedAmount, &w.StakingRewards, &w.Version, &w.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) PutWallet(ctx context.Context, wallet Wallet) error {
	if wallet.Version == 1 {
		const insert = `INSERT INTO wallets (user_id, balance, locked_balance, total_earned,
                total_spent, net_tokens, staked_amount, staking_rewards, version, last_updated)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            ON CONFLICT (user_id) DO NOTHING`
		tag, err := s.db.Exec(ctx, insert, wallet.UserID, wallet.Balance, wallet.LockedBalance,
			wallet.TotalEarned, wallet.TotalSpent, wallet.NetTokens, wallet.StakedAmount,
			wallet.StakingRewards, wallet.Version, wallet.LastUpdated.UTC())
		if err != nil {
			return fmt.Errorf("insert wallet: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		return nil
	}

	const update = `UPDATE wallets SET balance = $2, locked_balance = $3, total_earned = $4,
            total_spent = $5, net_tokens = $6, staked_amount = $7, staking_rewards = $8,
            version = $9, last_updated = $10
        WHERE user_id = $1 AND version = $11`
	tag, err := s.db.Exec(ctx, update, wallet.UserID, wallet.Balance, wallet.LockedBalance,
		wallet.TotalEarned, wallet.TotalSpent, wallet.NetTokens, wallet.StakedAmount,
		wallet.StakingRewards, wallet.Version, wallet.LastUpdated.UTC(), wallet.Version-1)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) AppendTransaction(ctx context.Context, txn Transaction) error {
	var metadata []byte
	if txn.Metadata != nil {
		encoded, err := json.Marshal(txn.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = encoded
	}
	const insert = `INSERT INTO wallet_transactions (id, user_id, type, amount, description,
            service_type, service_reference_id, status, metadata, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.Exec(ctx, insert, txn.ID, txn.UserID, txn.Type, txn.Amount, txn.Description,
		txn.ServiceType, txn.ServiceReferenceID, txn.Status, metadata,
		txn.CreatedAt.UTC(), txn.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	query := `SELECT id, user_id, type, amount, description, service_type,
            service_reference_id, status, metadata, created_at, updated_at
        FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var txn Transaction
		var metadata []byte
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount, &txn.Description,
			&txn.ServiceType, &txn.ServiceReferenceID, &txn.Status, &metadata,
			&txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &txn.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendPayment(ctx context.Context, payment Payment) error {
	const insert = `INSERT INTO wallet_payments (id, user_id, amount, service_type, service_id,
            description, status, created_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.Exec(ctx, insert, payment.ID, payment.UserID, payment.Amount,
		payment.ServiceType, payment.ServiceID, payment.Description, payment.Status,
		payment.CreatedAt.UTC(), payment.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Payments(ctx context.Context, userID string) ([]Payment, error) {
	const query = `SELECT id, user_id, amount, service_type, service_id, description,
            status, created_at, completed_at
        FROM wallet_payments WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.ServiceType, &p.ServiceID,
			&p.Description, &p.Status, &p.CreatedAt, &p.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
