package funds

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/sentinel"
)

// PostgresLedger persists balances in PostgreSQL. Apply runs inside a single
// transaction with rows locked in account order, so concurrent batches
// touching the same accounts serialize instead of deadlocking.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// EnsureSchema creates the balances table when it does not exist yet.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS account_balances (
			account TEXT PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure balances schema: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Deposit(ctx context.Context, account domain.Identity, amount int64) error {
	if !account.Valid() || amount <= 0 {
		return fmt.Errorf("deposit: %w", sentinel.ErrInvalidState)
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO account_balances (account, balance) VALUES ($1, $2)
		ON CONFLICT (account) DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance
	`, string(account), amount)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Balance(ctx context.Context, account domain.Identity) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx, `
		SELECT balance FROM account_balances WHERE account = $1
	`, string(account)).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

func (l *PostgresLedger) Apply(ctx context.Context, legs []Leg) error {
	net := make(map[domain.Identity]int64, len(legs))
	for _, leg := range legs {
		if !leg.Account.Valid() {
			return fmt.Errorf("apply: %w: empty account", sentinel.ErrInvalidState)
		}
		net[leg.Account] += leg.Amount
	}
	accounts := make([]string, 0, len(net))
	for account := range net {
		accounts = append(accounts, string(account))
	}
	sort.Strings(accounts)

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("apply: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, account := range accounts {
		delta := net[domain.Identity(account)]
		if delta == 0 {
			continue
		}
		if delta < 0 {
			tag, err := tx.Exec(ctx, `
				UPDATE account_balances SET balance = balance + $2
				WHERE account = $1 AND balance + $2 >= 0
			`, account, delta)
			if err != nil {
				return fmt.Errorf("apply: account %s: %w", account, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("apply: account %s: %w", account, sentinel.ErrInsufficientFunds)
			}
			continue
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO account_balances (account, balance) VALUES ($1, $2)
			ON CONFLICT (account) DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance
		`, account, delta)
		if err != nil {
			return fmt.Errorf("apply: account %s: %w", account, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("apply: commit: %w", err)
	}
	return nil
}
