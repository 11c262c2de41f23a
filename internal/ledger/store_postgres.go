package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code raised by the fingerprint index.
const uniqueViolation = "23505"

// PostgresStore persists assets in PostgreSQL. ID density comes from the
// BIGSERIAL sequence; fingerprint uniqueness from the unique index, checked
// atomically with the insert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the assets table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS invoice_assets (
			id           BIGSERIAL PRIMARY KEY,
			fingerprint  TEXT NOT NULL UNIQUE,
			face_value   BIGINT NOT NULL CHECK (face_value > 0),
			maturity_at  TIMESTAMPTZ NOT NULL,
			originator   TEXT NOT NULL,
			holder       TEXT NOT NULL,
			redeemed     BOOLEAN NOT NULL DEFAULT FALSE,
			listed_price BIGINT NOT NULL DEFAULT 0,
			risk_score   INT NOT NULL,
			metadata     TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure assets schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, asset domain.InvoiceAsset) (uint64, error) {
	var id uint64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO invoice_assets
			(fingerprint, face_value, maturity_at, originator, holder, redeemed, listed_price, risk_score, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		string(asset.Fingerprint), asset.FaceValue, asset.MaturityAt,
		string(asset.Originator), string(asset.Holder), asset.Redeemed,
		asset.ListedPrice, asset.RiskScore, asset.Metadata, asset.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return 0, fmt.Errorf("create asset: fingerprint %s: %w", asset.Fingerprint, sentinel.ErrConflict)
		}
		return 0, fmt.Errorf("create asset: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uint64) (domain.InvoiceAsset, error) {
	var (
		asset                         domain.InvoiceAsset
		fingerprint, originator, hold string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, face_value, maturity_at, originator, holder,
		       redeemed, listed_price, risk_score, metadata, created_at
		FROM invoice_assets WHERE id = $1
	`, id).Scan(
		&asset.ID, &fingerprint, &asset.FaceValue, &asset.MaturityAt,
		&originator, &hold, &asset.Redeemed, &asset.ListedPrice,
		&asset.RiskScore, &asset.Metadata, &asset.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InvoiceAsset{}, fmt.Errorf("get asset %d: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return domain.InvoiceAsset{}, fmt.Errorf("get asset %d: %w", id, err)
	}
	asset.Fingerprint = domain.Fingerprint(fingerprint)
	asset.Originator = domain.Identity(originator)
	asset.Holder = domain.Identity(hold)
	return asset, nil
}

func (s *PostgresStore) Update(ctx context.Context, asset domain.InvoiceAsset) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE invoice_assets
		SET holder = $2, redeemed = $3, listed_price = $4
		WHERE id = $1
	`, asset.ID, string(asset.Holder), asset.Redeemed, asset.ListedPrice)
	if err != nil {
		return fmt.Errorf("update asset %d: %w", asset.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update asset %d: %w", asset.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update asset %d: %w", asset.ID, sentinel.ErrNotFound)
	}
	return nil
}
