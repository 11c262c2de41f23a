// Package domain holds the core entities of the invoice ledger. Types here are
// plain data with small predicates; all behavior lives in the service packages.
package domain

import (
	"encoding/hex"
	"time"
)

// Identity names a participant: an originator, holder, buyer, or payer.
// Identities are opaque to the ledger; upstream auth decides what they mean.
type Identity string

// Valid reports whether the identity is usable as an account or owner.
func (i Identity) Valid() bool { return i != "" }

// Fingerprint is the hex-encoded hash of the underlying invoice document.
// Exactly one asset may ever exist per fingerprint.
type Fingerprint string

// FingerprintHexLen is the canonical length of a hex-encoded 32-byte digest.
const FingerprintHexLen = 64

// Valid reports whether the fingerprint is a well-formed 32-byte hex digest.
func (f Fingerprint) Valid() bool {
	if len(f) != FingerprintHexLen {
		return false
	}
	_, err := hex.DecodeString(string(f))
	return err == nil
}

// InvoiceAsset is a tokenized invoice tracked by the ledger.
//
// IDs are dense, strictly increasing, and start at 1; 0 means "no asset".
// FaceValue and ListedPrice are in the smallest currency unit. ListedPrice 0
// means unlisted. Once Redeemed flips true the asset is permanently closed and
// no field changes again.
type InvoiceAsset struct {
	ID          uint64
	Fingerprint Fingerprint
	FaceValue   int64
	MaturityAt  time.Time
	Originator  Identity
	Holder      Identity
	Redeemed    bool
	ListedPrice int64
	RiskScore   int
	Metadata    string
	CreatedAt   time.Time
}

// Listed reports whether the asset currently carries a marketplace listing.
func (a InvoiceAsset) Listed() bool { return a.ListedPrice > 0 }

// MaxRiskScore bounds the advisory risk input.
const MaxRiskScore = 100
