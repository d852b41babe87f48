package pricing

import (
	"math"
	"sort"

	"github.com/biggslaundromat/laundromat/internal/service/models/loyalty"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DeliveryTier charges Fee for distances up to and including MaxKm.
type DeliveryTier struct {
	MaxKm float64
	Fee   decimal.Decimal
}

// Rules holds every tunable number used to price an order.
type Rules struct {
	Origin            Point
	DeliveryTiers     []DeliveryTier
	DeliveryFeeBeyond decimal.Decimal
	PointsPerUnit     decimal.Decimal
	RedemptionRate    int64
	SilverThreshold   int64
	GoldThreshold     int64
	PlatinumThreshold int64
}

// DefaultRules is the Nairobi pricing used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		Origin: Point{Latitude: -1.286389, Longitude: 36.817223},
		DeliveryTiers: []DeliveryTier{
			{MaxKm: 5, Fee: decimal.Zero},
			{MaxKm: 15, Fee: decimal.NewFromInt(100)},
			{MaxKm: 30, Fee: decimal.NewFromInt(200)},
		},
		DeliveryFeeBeyond: decimal.NewFromInt(300),
		PointsPerUnit:     decimal.NewFromInt(1),
		RedemptionRate:    100,
		SilverThreshold:   100,
		GoldThreshold:     300,
		PlatinumThreshold: 500,
	}
}

// RulesFromViper overlays configured values on DefaultRules.
func RulesFromViper() Rules {
	r := DefaultRules()

	if viper.IsSet("business.origin_latitude") && viper.IsSet("business.origin_longitude") {
		r.Origin = Point{
			Latitude:  viper.GetFloat64("business.origin_latitude"),
			Longitude: viper.GetFloat64("business.origin_longitude"),
		}
	}

	var tiers []struct {
		MaxKm float64 `mapstructure:"max_km"`
		Fee   float64 `mapstructure:"fee"`
	}
	if err := viper.UnmarshalKey("pricing.delivery_tiers", &tiers); err == nil && len(tiers) > 0 {
		r.DeliveryTiers = make([]DeliveryTier, 0, len(tiers))
		for _, t := range tiers {
			r.DeliveryTiers = append(r.DeliveryTiers, DeliveryTier{
				MaxKm: t.MaxKm,
				Fee:   decimal.NewFromFloat(t.Fee),
			})
		}
		sort.Slice(r.DeliveryTiers, func(i, j int) bool {
			return r.DeliveryTiers[i].MaxKm < r.DeliveryTiers[j].MaxKm
		})
	}
	if viper.IsSet("pricing.delivery_fee_beyond") {
		r.DeliveryFeeBeyond = decimal.NewFromFloat(viper.GetFloat64("pricing.delivery_fee_beyond"))
	}

	if v := viper.GetFloat64("loyalty.points_per_unit"); v > 0 {
		r.PointsPerUnit = decimal.NewFromFloat(v)
	}
	if v := viper.GetInt64("loyalty.redemption_rate"); v > 0 {
		r.RedemptionRate = v
	}
	if v := viper.GetInt64("loyalty.silver_threshold"); v > 0 {
		r.SilverThreshold = v
	}
	if v := viper.GetInt64("loyalty.gold_threshold"); v > 0 {
		r.GoldThreshold = v
	}
	if v := viper.GetInt64("loyalty.platinum_threshold"); v > 0 {
		r.PlatinumThreshold = v
	}

	return r
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DeliveryFee prices a pickup at p. A nil pickup is free.
func (r Rules) DeliveryFee(p *Point) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}

	return r.FeeForDistance(Haversine(r.Origin, *p))
}

// FeeForDistance applies the tier table to a distance in kilometres.
func (r Rules) FeeForDistance(km float64) decimal.Decimal {
	for _, tier := range r.DeliveryTiers {
		if km <= tier.MaxKm {
			return tier.Fee
		}
	}

	return r.DeliveryFeeBeyond
}

// LoyaltyDiscount converts a point balance into whole currency units and
// reports how many points that conversion consumes.
func (r Rules) LoyaltyDiscount(balance int64) (decimal.Decimal, int64) {
	if balance <= 0 || r.RedemptionRate <= 0 {
		return decimal.Zero, 0
	}

	units := balance / r.RedemptionRate

	return decimal.NewFromInt(units), units * r.RedemptionRate
}

// PointsForDiscount is the number of points that pay for a whole-unit loyalty discount.
func (r Rules) PointsForDiscount(amount decimal.Decimal) int64 {
	return amount.Floor().IntPart() * r.RedemptionRate
}

// PointsEarned is floor(total * PointsPerUnit), never negative.
func (r Rules) PointsEarned(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}

	return total.Mul(r.PointsPerUnit).Floor().IntPart()
}

// TierFor classifies lifetime points.
func (r Rules) TierFor(lifetimePoints int64) loyalty.Tier {
	switch {
	case lifetimePoints >= r.PlatinumThreshold:
		return loyalty.TierPlatinum
	case lifetimePoints >= r.GoldThreshold:
		return loyalty.TierGold
	case lifetimePoints >= r.SilverThreshold:
		return loyalty.TierSilver
	default:
		return loyalty.TierBronze
	}
}

// Breakdown is the settled price of an order.
// Total always equals Subtotal + DeliveryFee - DiscountAmount - LoyaltyDiscount.
type Breakdown struct {
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	DiscountAmount  decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	Total           decimal.Decimal
}

// Settle combines the price components, capping the discount and then the
// loyalty discount so the total never drops below zero. The loyalty discount
// stays in whole currency units.
func Settle(subtotal, deliveryFee, discountAmount, loyaltyDiscount decimal.Decimal) Breakdown {
	gross := subtotal.Add(deliveryFee)

	if discountAmount.IsNegative() {
		discountAmount = decimal.Zero
	}
	discountAmount = decimal.Min(discountAmount, gross)

	remaining := gross.Sub(discountAmount)
	if loyaltyDiscount.IsNegative() {
		loyaltyDiscount = decimal.Zero
	}
	loyaltyDiscount = decimal.Min(loyaltyDiscount, remaining.Floor())

	return Breakdown{
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		DiscountAmount:  discountAmount,
		LoyaltyDiscount: loyaltyDiscount,
		Total:           remaining.Sub(loyaltyDiscount),
	}
}
