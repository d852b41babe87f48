package loyalty

import "time"

// Tier is a display classification derived from lifetime points.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

func (t Tier) String() string {
	return string(t)
}

// Account is a customer's points ledger.
type Account struct {
	ID                int64
	CustomerID        int64
	TotalPointsEarned int64
	PointsRedeemed    int64
	CurrentBalance    int64
	Tier              Tier
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
