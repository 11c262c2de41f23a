// Package market layers listing, cancellation, and purchase on top of the
// asset ledger. Ownership and pricing invariants are checked inside the
// ledger's per-asset mutation boundary; the payment legs settle as the final
// failure-checked step, and a failed transfer restores the prior asset state,
// so ownership and money never commit apart.
package market

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

var tracer = otel.Tracer("factorhub/internal/market")

// AssetLedger is the slice of ledger.Service the marketplace needs.
type AssetLedger interface {
	Mutate(ctx context.Context, id uint64, fn func(asset *domain.InvoiceAsset) (settle func(ctx context.Context) error, err error)) error
}

// Metrics receives marketplace counters; the platform metrics type satisfies
// it and tests pass a no-op.
type Metrics interface {
	ListingRecorded()
	SaleRecorded(price int64)
}

// Service executes marketplace operations.
type Service struct {
	assets  AssetLedger
	funds   funds.Ledger
	events  events.Emitter
	metrics Metrics
}

func NewService(assets AssetLedger, fundsLedger funds.Ledger, emitter events.Emitter, metrics Metrics) *Service {
	return &Service{assets: assets, funds: fundsLedger, events: emitter, metrics: metrics}
}

// DiscountBPS is the listing discount in basis points, truncated toward zero.
func DiscountBPS(faceValue, price int64) int64 {
	return (faceValue - price) * 10000 / faceValue
}

// List puts the asset on the marketplace at the given price. Only the current
// holder may list, the asset must be open, and the price must undercut face
// value.
func (s *Service) List(ctx context.Context, id uint64, price int64, requester domain.Identity) error {
	ctx, span := tracer.Start(ctx, "market.List", trace.WithAttributes(attribute.Int64("asset.id", int64(id))))
	defer span.End()

	return s.assets.Mutate(ctx, id, func(asset *domain.InvoiceAsset) (func(context.Context) error, error) {
		if requester != asset.Holder {
			return nil, dErrors.New(dErrors.CodeNotOwner, "only the holder may list")
		}
		if asset.Redeemed {
			return nil, dErrors.New(dErrors.CodeAlreadyRedeemed, "asset is closed")
		}
		if price <= 0 || price >= asset.FaceValue {
			return nil, dErrors.New(dErrors.CodeInvalidPrice, "price must be positive and below face value")
		}
		asset.ListedPrice = price
		discount := DiscountBPS(asset.FaceValue, price)

		return func(ctx context.Context) error {
			s.events.Emit(ctx, events.Event{
				Kind:        events.KindListed,
				AssetID:     id,
				Price:       price,
				DiscountBPS: discount,
			})
			s.metrics.ListingRecorded()
			return nil
		}, nil
	})
}

// Unlist clears the listing. Clearing an absent price is idempotent, and a
// redeemed asset is deliberately not rejected: redemption already cleared the
// price, so unlisting it is a harmless no-op.
func (s *Service) Unlist(ctx context.Context, id uint64, requester domain.Identity) error {
	ctx, span := tracer.Start(ctx, "market.Unlist", trace.WithAttributes(attribute.Int64("asset.id", int64(id))))
	defer span.End()

	return s.assets.Mutate(ctx, id, func(asset *domain.InvoiceAsset) (func(context.Context) error, error) {
		if requester != asset.Holder {
			return nil, dErrors.New(dErrors.CodeNotOwner, "only the holder may unlist")
		}
		asset.ListedPrice = 0
		return nil, nil
	})
}

// Buy transfers ownership to the buyer against the listed price. The buyer
// tenders payment; the seller receives exactly the listed price and any
// excess is refunded to the buyer. The transfer legs apply all-or-nothing
// once the ownership change persists; a failed transfer restores the seller.
func (s *Service) Buy(ctx context.Context, id uint64, payment int64, buyer domain.Identity) error {
	ctx, span := tracer.Start(ctx, "market.Buy", trace.WithAttributes(attribute.Int64("asset.id", int64(id))))
	defer span.End()

	return s.assets.Mutate(ctx, id, func(asset *domain.InvoiceAsset) (func(context.Context) error, error) {
		if asset.Redeemed {
			return nil, dErrors.New(dErrors.CodeAlreadyRedeemed, "asset is closed")
		}
		if !asset.Listed() {
			return nil, dErrors.New(dErrors.CodeNotListed, "asset is not listed")
		}
		if payment < asset.ListedPrice {
			return nil, dErrors.Newf(dErrors.CodeInsufficientPayment, "payment %d below listed price %d", payment, asset.ListedPrice)
		}
		if buyer == asset.Holder {
			return nil, dErrors.New(dErrors.CodeSelfPurchase, "holder cannot buy own asset")
		}
		if !buyer.Valid() {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "buyer identity is required")
		}

		seller := asset.Holder
		price := asset.ListedPrice
		asset.Holder = buyer
		asset.ListedPrice = 0

		legs := []funds.Leg{
			funds.Debit(buyer, payment),
			funds.Credit(seller, price),
		}
		if excess := payment - price; excess > 0 {
			legs = append(legs, funds.Credit(buyer, excess))
		}

		return func(ctx context.Context) error {
			if err := s.funds.Apply(ctx, legs); err != nil {
				if errors.Is(err, sentinel.ErrInsufficientFunds) {
					return dErrors.Wrap(dErrors.CodeInsufficientFunds, "buyer cannot cover payment", err)
				}
				return dErrors.Wrap(dErrors.CodeInternal, "settle purchase", err)
			}
			s.events.Emit(ctx, events.Event{
				Kind:      events.KindSold,
				AssetID:   id,
				Seller:    seller,
				Buyer:     buyer,
				PricePaid: price,
			})
			s.metrics.SaleRecorded(price)
			return nil
		}, nil
	})
}
