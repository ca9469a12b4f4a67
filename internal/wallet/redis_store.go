package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	walletKeyPrefix  = "wallet:v1:"
	txnKeyPrefix     = "txns:v1:"
	paymentKeyPrefix = "payments:v1:"
)

// RedisStore keeps the wallet record as a JSON blob and the transaction and
// payment logs as Redis lists (LPUSH keeps them newest first). Wallet writes
// go through WATCH so the version check and the SET are atomic.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a store backed by the provided Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetWallet(ctx context.Context, userID string) (Wallet, error) {
	raw, err := s.client.Get(ctx, walletKeyPrefix+userID).Result()
	if err == redis.Nil {
		return Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	var w Wallet
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Wallet{}, fmt.Errorf("%w: %v", ErrCorruptWallet, err)
	}
	return w, nil
}

func (s *RedisStore) PutWallet(ctx context.Context, wallet Wallet) error {
	key := walletKeyPrefix + wallet.UserID

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
			if wallet.Version != 1 {
				return ErrVersionConflict
			}
		case err != nil:
			return fmt.Errorf("get wallet: %w", err)
		default:
			var current Wallet
			if err := json.Unmarshal([]byte(raw), &current); err == nil && current.Version != wallet.Version-1 {
				return ErrVersionConflict
			}
		}

		payload, err := json.Marshal(wallet)
		if err != nil {
			return fmt.Errorf("encode wallet: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) AppendTransaction(ctx context.Context, txn Transaction) error {
	payload, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	return s.client.LPush(ctx, txnKeyPrefix+txn.UserID, payload).Err()
}

func (s *RedisStore) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raws, err := s.client.LRange(ctx, txnKeyPrefix+userID, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]Transaction, 0, len(raws))
	for _, raw := range raws {
		var txn Transaction
		if err := json.Unmarshal([]byte(raw), &txn); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		out = append(out, txn)
	}
	return out, nil
}

func (s *RedisStore) AppendPayment(ctx context.Context, payment Payment) error {
	payload, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("encode payment: %w", err)
	}
	return s.client.LPush(ctx, paymentKeyPrefix+payment.UserID, payload).Err()
}

func (s *RedisStore) Payments(ctx context.Context, userID string) ([]Payment, error) {
	raws, err := s.client.LRange(ctx, paymentKeyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]Payment, 0, len(raws))
	for _, raw := range raws {
		var p Payment
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode payment: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
