// Package settlement closes assets: redemption pays the current holder the
// full face value and permanently retires the asset.
package settlement

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"factorhub/internal/domain"
	"factorhub/internal/events"
	"factorhub/internal/funds"
	dErrors "factorhub/pkg/domain-errors"
	"factorhub/pkg/platform/sentinel"
)

var tracer = otel.Tracer("factorhub/internal/settlement")

// AssetLedger is the slice of ledger.Service settlement needs.
type AssetLedger interface {
	Mutate(ctx context.Context, id uint64, fn func(asset *domain.InvoiceAsset) (settle func(ctx context.Context) error, err error)) error
}

// Metrics receives settlement counters.
type Metrics interface {
	RedemptionRecorded(faceValue int64)
}

// Service executes redemptions.
type Service struct {
	assets  AssetLedger
	funds   funds.Ledger
	events  events.Emitter
	metrics Metrics
}

func NewService(assets AssetLedger, fundsLedger funds.Ledger, emitter events.Emitter, metrics Metrics) *Service {
	return &Service{assets: assets, funds: fundsLedger, events: emitter, metrics: metrics}
}

// Redeem settles the asset at face value. Any payer may redeem; the ledger
// does not verify the payer against an off-chain obligation, it only requires
// the funds. The holder receives face value, excess payment returns to the
// payer, and the asset closes for good. The payment legs settle once the
// closed state persists; a failed transfer reopens the asset.
func (s *Service) Redeem(ctx context.Context, id uint64, payment int64, payer domain.Identity) error {
	ctx, span := tracer.Start(ctx, "settlement.Redeem", trace.WithAttributes(attribute.Int64("asset.id", int64(id))))
	defer span.End()

	return s.assets.Mutate(ctx, id, func(asset *domain.InvoiceAsset) (func(context.Context) error, error) {
		if asset.Redeemed {
			return nil, dErrors.New(dErrors.CodeAlreadyRedeemed, "asset already redeemed")
		}
		if payment < asset.FaceValue {
			return nil, dErrors.Newf(dErrors.CodeInsufficientPayment, "payment %d below face value %d", payment, asset.FaceValue)
		}
		if !payer.Valid() {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "payer identity is required")
		}

		holder := asset.Holder
		face := asset.FaceValue
		asset.Redeemed = true
		asset.ListedPrice = 0

		legs := []funds.Leg{
			funds.Debit(payer, payment),
			funds.Credit(holder, face),
		}
		if excess := payment - face; excess > 0 {
			legs = append(legs, funds.Credit(payer, excess))
		}

		return func(ctx context.Context) error {
			if err := s.funds.Apply(ctx, legs); err != nil {
				if errors.Is(err, sentinel.ErrInsufficientFunds) {
					return dErrors.Wrap(dErrors.CodeInsufficientFunds, "payer cannot cover face value", err)
				}
				return dErrors.Wrap(dErrors.CodeInternal, "settle redemption", err)
			}
			s.events.Emit(ctx, events.Event{
				Kind:    events.KindRedeemed,
				AssetID: id,
				Payer:   payer,
				Payout:  face,
			})
			s.metrics.RedemptionRecorded(face)
			return nil
		}, nil
	})
}
