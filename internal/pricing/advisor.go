// Package pricing computes an advisory early-payment price from time to
// maturity and risk score. The marketplace never consults it; callers may
// list at any price that undercuts face value.
package pricing

import (
	"context"
	"time"

	"factorhub/internal/domain"
	dErrors "factorhub/pkg/domain-errors"
)

const (
	// bpsPerDay and bpsPerRiskPoint are the fixed discount slopes.
	bpsPerDay       = 10
	bpsPerRiskPoint = 10
	// maxDiscountBPS caps the total discount at 50% of face value.
	maxDiscountBPS = 5000

	secondsPerDay = 86400
)

// AssetReader is the read-only slice of ledger.Service the advisor needs.
type AssetReader interface {
	Get(ctx context.Context, id uint64) (domain.InvoiceAsset, error)
}

// Advisor recommends prices for open assets.
type Advisor struct {
	assets AssetReader
	clock  func() time.Time
}

func NewAdvisor(assets AssetReader, clock func() time.Time) *Advisor {
	if clock == nil {
		clock = time.Now
	}
	return &Advisor{assets: assets, clock: clock}
}

// Recommend returns the advisory price for the asset at the current time.
// An asset at or past maturity is an error, not a clamp: recommending a
// price for a past-due invoice would invite mispriced listings.
func (a *Advisor) Recommend(ctx context.Context, id uint64) (int64, error) {
	asset, err := a.assets.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if asset.Redeemed {
		return 0, dErrors.New(dErrors.CodeAlreadyRedeemed, "asset is closed")
	}
	now := a.clock().UTC()
	if !asset.MaturityAt.After(now) {
		return 0, dErrors.New(dErrors.CodeMaturityInPast, "asset is at or past maturity")
	}
	days := int64(asset.MaturityAt.Sub(now) / (secondsPerDay * time.Second))
	return Recommended(asset.FaceValue, asset.RiskScore, days), nil
}

// Recommended is the pure pricing rule: 10 bps per day to maturity plus
// 10 bps per risk point, capped at 5000 bps, floor division throughout.
func Recommended(faceValue int64, riskScore int, daysToMaturity int64) int64 {
	discountBPS := daysToMaturity*bpsPerDay + int64(riskScore)*bpsPerRiskPoint
	if discountBPS > maxDiscountBPS {
		discountBPS = maxDiscountBPS
	}
	return faceValue - faceValue*discountBPS/10000
}
