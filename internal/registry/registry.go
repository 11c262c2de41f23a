// Package registry is the pre-tokenization proof-of-existence service: a
// fingerprint-to-timestamp/registrar lookup. It records that a document
// existed at a point in time, nothing more. The asset ledger does not depend
// on it and never consults it.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"factorhub/internal/domain"
	dErrors "factorhub/pkg/domain-errors"
	"factorhub/pkg/platform/sentinel"
)

// Record proves a document's existence at RegisteredAt.
type Record struct {
	Fingerprint  domain.Fingerprint `json:"fingerprint"`
	RegisteredAt time.Time          `json:"registered_at"`
	Registrar    domain.Identity    `json:"registrar"`
	Metadata     string             `json:"metadata,omitempty"`
}

// Store persists registry records. Save returns sentinel.ErrConflict when the
// fingerprint is already registered; Find returns sentinel.ErrNotFound.
type Store interface {
	Save(ctx context.Context, record Record) error
	Find(ctx context.Context, fingerprint domain.Fingerprint) (Record, error)
}

// ComputeFingerprint hashes raw document content the same way the ingestion
// pipeline does, so both sides agree on identity.
func ComputeFingerprint(content []byte) domain.Fingerprint {
	sum := sha256.Sum256(content)
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// Service exposes register/verify/lookup.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

// Register records the fingerprint. Registering the same document twice is a
// conflict; the first registration wins and keeps its timestamp.
func (s *Service) Register(ctx context.Context, fingerprint domain.Fingerprint, metadata string, registrar domain.Identity) (Record, error) {
	if !registrar.Valid() {
		return Record{}, dErrors.New(dErrors.CodeUnauthorized, "registrar identity is required")
	}
	if !fingerprint.Valid() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "fingerprint must be a 64-char hex digest")
	}
	record := Record{
		Fingerprint:  fingerprint,
		RegisteredAt: s.clock().UTC(),
		Registrar:    registrar,
		Metadata:     metadata,
	}
	if err := s.store.Save(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Record{}, dErrors.Wrap(dErrors.CodeConflict, "document already registered", err)
		}
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "register document", err)
	}
	return record, nil
}

// Verify reports whether the fingerprint is registered.
func (s *Service) Verify(ctx context.Context, fingerprint domain.Fingerprint) (bool, error) {
	_, err := s.store.Find(ctx, fingerprint)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "verify document", err)
	}
	return true, nil
}

// Get returns the registration record for the fingerprint.
func (s *Service) Get(ctx context.Context, fingerprint domain.Fingerprint) (Record, error) {
	record, err := s.store.Find(ctx, fingerprint)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, dErrors.Wrap(dErrors.CodeNotFound, "document not registered", err)
	}
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "look up document", err)
	}
	return record, nil
}
