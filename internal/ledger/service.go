package ledger

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"factorhub/internal/domain"
	"factorhub/internal/events"
	dErrors "factorhub/pkg/domain-errors"
	"factorhub/pkg/platform/sentinel"
)

var tracer = otel.Tracer("factorhub/internal/ledger")

// Clock is injected for testability; defaults to time.Now.
type Clock func() time.Time

// MintRequest carries the verified inputs the upstream pipeline produced for
// a new asset. Requester becomes both originator and initial holder.
type MintRequest struct {
	Fingerprint domain.Fingerprint
	FaceValue   int64
	MaturityAt  time.Time
	RiskScore   int
	Metadata    string
	Requester   domain.Identity
}

// Service enforces the asset invariants on top of a Store and serializes
// mutations per asset ID. Marketplace and settlement logic funnel every
// read-modify-write through Mutate so check-then-act races cannot interleave.
type Service struct {
	store  Store
	events events.Emitter
	clock  Clock
	minted func()
	locks  keyLock
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMintRecorded registers a hook invoked once per successful mint
// (metrics).
func WithMintRecorded(fn func()) Option {
	return func(s *Service) { s.minted = fn }
}

func NewService(store Store, emitter events.Emitter, opts ...Option) *Service {
	s := &Service{store: store, events: emitter, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint tokenizes a verified invoice. The fingerprint must never have been
// tokenized before; face value must be positive and maturity in the future.
func (s *Service) Mint(ctx context.Context, req MintRequest) (uint64, error) {
	ctx, span := tracer.Start(ctx, "ledger.Mint")
	defer span.End()

	if !req.Requester.Valid() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "requester identity is required")
	}
	if !req.Fingerprint.Valid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "fingerprint must be a 64-char hex digest")
	}
	if req.FaceValue <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidAmount, "face value must be positive")
	}
	now := s.clock().UTC()
	if !req.MaturityAt.After(now) {
		return 0, dErrors.New(dErrors.CodeInvalidMaturity, "maturity must be in the future")
	}
	if req.RiskScore < 0 || req.RiskScore > domain.MaxRiskScore {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "risk score must be in [0,%d]", domain.MaxRiskScore)
	}

	asset := domain.InvoiceAsset{
		Fingerprint: req.Fingerprint,
		FaceValue:   req.FaceValue,
		MaturityAt:  req.MaturityAt.UTC(),
		Originator:  req.Requester,
		Holder:      req.Requester,
		RiskScore:   req.RiskScore,
		Metadata:    req.Metadata,
		CreatedAt:   now,
	}
	id, err := s.store.Create(ctx, asset)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return 0, dErrors.Wrap(dErrors.CodeDuplicateFingerprint, "document already tokenized", err)
		}
		return 0, dErrors.Wrap(dErrors.CodeInternal, "mint", err)
	}
	span.SetAttributes(attribute.Int64("asset.id", int64(id)))
	if s.minted != nil {
		s.minted()
	}

	s.events.Emit(ctx, events.Event{
		Kind:        events.KindMinted,
		AssetID:     id,
		Fingerprint: req.Fingerprint,
		Originator:  req.Requester,
		FaceValue:   req.FaceValue,
		MaturityAt:  asset.MaturityAt,
	})
	return id, nil
}

// Get returns a snapshot of the asset. ID 0 is the "no asset" sentinel and is
// always not found.
func (s *Service) Get(ctx context.Context, id uint64) (domain.InvoiceAsset, error) {
	ctx, span := tracer.Start(ctx, "ledger.Get", trace.WithAttributes(attribute.Int64("asset.id", int64(id))))
	defer span.End()

	if id == 0 {
		return domain.InvoiceAsset{}, dErrors.New(dErrors.CodeNotFound, "asset id 0 is reserved")
	}
	asset, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.InvoiceAsset{}, dErrors.Wrap(dErrors.CodeNotFound, "unknown asset", err)
		}
		return domain.InvoiceAsset{}, dErrors.Wrap(dErrors.CodeInternal, "get asset", err)
	}
	return asset, nil
}

// Mutate runs fn against the current asset state under the per-asset lock and
// persists the result when fn succeeds. fn validates against the loaded state
// and may return a settle callback carrying the monetary side of the
// operation. settle runs only after the new state has persisted; if it fails,
// the prior state is written back. The asset and its funds therefore commit
// together or not at all, and nothing observable survives a failed step.
func (s *Service) Mutate(ctx context.Context, id uint64, fn func(asset *domain.InvoiceAsset) (settle func(ctx context.Context) error, err error)) error {
	ctx, span := tracer.Start(ctx, "ledger.Mutate", trace.WithAttributes(attribute.Int64("asset.id", int64(id))))
	defer span.End()

	if id == 0 {
		return dErrors.New(dErrors.CodeNotFound, "asset id 0 is reserved")
	}
	mu := s.locks.lock(id)
	defer mu.Unlock()

	asset, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(dErrors.CodeNotFound, "unknown asset", err)
		}
		return dErrors.Wrap(dErrors.CodeInternal, "get asset", err)
	}
	prior := asset
	settle, err := fn(&asset)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, asset); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "persist asset", err)
	}
	if settle == nil {
		return nil
	}
	if err := settle(ctx); err != nil {
		if rbErr := s.store.Update(ctx, prior); rbErr != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "restore asset after failed settlement", errors.Join(err, rbErr))
		}
		return err
	}
	return nil
}

// Now exposes the service clock to collaborators that share its timeline.
func (s *Service) Now() time.Time { return s.clock() }
