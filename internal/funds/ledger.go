// Package funds tracks prepaid account balances and executes the monetary
// side of marketplace operations. A transfer is a batch of legs applied
// all-or-nothing: either every debit and credit lands or none do, so ledger
// state never commits against a half-settled payment.
package funds

import (
	"context"

	"factorhub/internal/domain"
)

// Leg moves Amount into (positive) or out of (negative) a single account.
type Leg struct {
	Account domain.Identity
	Amount  int64
}

// Debit builds a leg removing amount from the account.
func Debit(account domain.Identity, amount int64) Leg {
	return Leg{Account: account, Amount: -amount}
}

// Credit builds a leg adding amount to the account.
func Credit(account domain.Identity, amount int64) Leg {
	return Leg{Account: account, Amount: amount}
}

// Ledger is the balance store. Apply must be atomic: if any debit would
// overdraw its account the whole batch fails with sentinel.ErrInsufficientFunds
// and no balance changes.
type Ledger interface {
	Deposit(ctx context.Context, account domain.Identity, amount int64) error
	Balance(ctx context.Context, account domain.Identity) (int64, error)
	Apply(ctx context.Context, legs []Leg) error
}
