package funds

import (
	"context"
	"fmt"
	"sync"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/sentinel"
)

// InMemoryLedger keeps balances in a map under one mutex. Apply validates
// every debit against the post-batch balance before touching anything, which
// gives all-or-nothing semantics without an undo path.
type InMemoryLedger struct {
	mu       sync.RWMutex
	balances map[domain.Identity]int64
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{balances: make(map[domain.Identity]int64)}
}

func (l *InMemoryLedger) Deposit(_ context.Context, account domain.Identity, amount int64) error {
	if !account.Valid() {
		return fmt.Errorf("deposit: %w: empty account", sentinel.ErrInvalidState)
	}
	if amount <= 0 {
		return fmt.Errorf("deposit: %w: non-positive amount", sentinel.ErrInvalidState)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
	return nil
}

func (l *InMemoryLedger) Balance(_ context.Context, account domain.Identity) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account], nil
}

func (l *InMemoryLedger) Apply(_ context.Context, legs []Leg) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Net the batch per account first; a buyer who is debited a payment and
	// credited a refund in the same batch only needs the net difference.
	net := make(map[domain.Identity]int64, len(legs))
	for _, leg := range legs {
		if !leg.Account.Valid() {
			return fmt.Errorf("apply: %w: empty account", sentinel.ErrInvalidState)
		}
		net[leg.Account] += leg.Amount
	}
	for account, delta := range net {
		if l.balances[account]+delta < 0 {
			return fmt.Errorf("apply: account %s: %w", account, sentinel.ErrInsufficientFunds)
		}
	}
	for account, delta := range net {
		l.balances[account] += delta
	}
	return nil
}
