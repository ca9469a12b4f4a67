package wallet

import "time"

// Transaction types recorded in the ledger log.
const (
	TypeEarn     = "earn"
	TypeSpend    = "spend"
	TypeTransfer = "transfer"
	TypeStake    = "stake"
	TypeUnstake  = "unstake"
	TypeReward   = "reward"
)

// Transaction statuses. Mutations settle synchronously, so the service only
// ever writes StatusCompleted; the other values exist for the wire contract.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// UserCategory selects the starting balance for a new wallet.
type UserCategory string

const (
	CategoryStandard UserCategory = "standard"
	CategoryDemo     UserCategory = "demo"
	CategoryVIP      UserCategory = "vip"
)

// Wallet is the single token account record for a user. Version carries the
// optimistic-concurrency counter checked by Store.PutWallet.
type Wallet struct {
	UserID         string    `json:"user_id"`
	Balance        float64   `json:"balance"`
	LockedBalance  float64   `json:"locked_balance"`
	TotalEarned    float64   `json:"total_earned"`
	TotalSpent     float64   `json:"total_spent"`
	NetTokens      float64   `json:"net_tokens"`
	StakedAmount   float64   `json:"staked_amount"`
	StakingRewards float64   `json:"staking_rewards"`
	Version        int64     `json:"version"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Transaction is an append-only ledger entry. Amount is signed: debits are
// negative.
type Transaction struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	Type               string         `json:"type"`
	Amount             float64        `json:"amount"`
	Description        string         `json:"description"`
	ServiceType        string         `json:"service_type,omitempty"`
	ServiceReferenceID string         `json:"service_reference_id,omitempty"`
	Status             string         `json:"status"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Payment is the denormalized checkout view of a spend, kept in its own log.
type Payment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	ServiceType string    `json:"service_type"`
	ServiceID   string    `json:"service_id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Stats is the read-only aggregate returned by Service.Stats.
type Stats struct {
	TotalValue       float64        `json:"total_value"`
	AvailableBalance float64        `json:"available_balance"`
	StakedAmount     float64        `json:"staked_amount"`
	TotalEarned      float64        `json:"total_earned"`
	TotalSpent       float64        `json:"total_spent"`
	NetGrowth        float64        `json:"net_growth"`
	MembershipTier   MembershipTier `json:"membership_tier"`
}
