// Package events is the append-only notification log for the asset ledger.
// Domain services emit events through a Publisher; a Worker drains them to a
// Store and optional external sinks so monitors can observe the ledger without
// back-pressure on the core.
package events

import (
	"time"

	"factorhub/internal/domain"
)

// Kind labels what happened to an asset.
type Kind string

const (
	KindMinted   Kind = "asset.minted"
	KindListed   Kind = "asset.listed"
	KindSold     Kind = "asset.sold"
	KindRedeemed Kind = "asset.redeemed"
)

// Event is emitted from domain logic to capture ledger transitions. Keep it
// transport-agnostic so stores and sinks can fan out. Fields beyond the header
// are populated per kind and zero otherwise.
type Event struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	AssetID uint64    `json:"asset_id"`
	At      time.Time `json:"at"`

	// asset.minted
	Fingerprint domain.Fingerprint `json:"fingerprint,omitempty"`
	Originator  domain.Identity    `json:"originator,omitempty"`
	FaceValue   int64              `json:"face_value,omitempty"`
	MaturityAt  time.Time          `json:"maturity_at,omitzero"`

	// asset.listed
	Price       int64 `json:"price,omitempty"`
	DiscountBPS int64 `json:"discount_bps,omitempty"`

	// asset.sold
	Seller    domain.Identity `json:"seller,omitempty"`
	Buyer     domain.Identity `json:"buyer,omitempty"`
	PricePaid int64           `json:"price_paid,omitempty"`

	// asset.redeemed
	Payer  domain.Identity `json:"payer,omitempty"`
	Payout int64           `json:"payout,omitempty"`
}
