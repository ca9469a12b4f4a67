package wallet

// MembershipTier is derived from lifetime earned tokens; it is never stored.
type MembershipTier struct {
	Name            string  `json:"name"`
	Level           int     `json:"level"`
	MinPoints       float64 `json:"min_points"`
	MaxPoints       float64 `json:"max_points"`
	BonusMultiplier float64 `json:"bonus_multiplier"`
	StakingBonus    float64 `json:"staking_bonus"`
	FeeDiscount     float64 `json:"fee_discount"`
}

// Tiers ordered highest threshold first so the first match wins and ties at a
// boundary resolve to the higher tier.
var tiers = []MembershipTier{
	{Name: "Diamond", Level: 4, MinPoints: 10000, MaxPoints: -1, BonusMultiplier: 2.0, StakingBonus: 0.15, FeeDiscount: 0.50},
	{Name: "Gold", Level: 3, MinPoints: 5000, MaxPoints: 9999, BonusMultiplier: 1.5, StakingBonus: 0.12, FeeDiscount: 0.30},
	{Name: "Silver", Level: 2, MinPoints: 1000, MaxPoints: 4999, BonusMultiplier: 1.2, StakingBonus: 0.10, FeeDiscount: 0.20},
	{Name: "Bronze", Level: 1, MinPoints: 0, MaxPoints: 999, BonusMultiplier: 1.0, StakingBonus: 0.08, FeeDiscount: 0.10},
}

// TierFor returns the membership tier for a lifetime-earned total. Thresholds
// are inclusive at the lower bound.
func TierFor(totalEarned float64) MembershipTier {
	for _, t := range tiers {
		if totalEarned >= t.MinPoints {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// EarningBonus is the extra credit granted on top of a base earn amount.
func EarningBonus(amount float64, tier MembershipTier) float64 {
	return amount * (tier.BonusMultiplier - 1)
}

// StakingYield is the tier-rate yield for a staked amount.
func StakingYield(amount float64, tier MembershipTier) float64 {
	return amount * tier.StakingBonus
}
