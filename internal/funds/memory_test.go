package funds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/sentinel"
)

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	ledger := NewInMemoryLedger()

	require.NoError(t, ledger.Deposit(ctx, "alice", 1000))
	require.NoError(t, ledger.Deposit(ctx, "alice", 500))

	balance, err := ledger.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	assert.Error(t, ledger.Deposit(ctx, "alice", 0))
	assert.Error(t, ledger.Deposit(ctx, "alice", -10))
	assert.Error(t, ledger.Deposit(ctx, "", 100))
}

func TestBalanceOfUnknownAccountIsZero(t *testing.T) {
	ledger := NewInMemoryLedger()
	balance, err := ledger.Balance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, balances map[domain.Identity]int64) *InMemoryLedger {
		t.Helper()
		ledger := NewInMemoryLedger()
		for account, amount := range balances {
			require.NoError(t, ledger.Deposit(ctx, account, amount))
		}
		return ledger
	}

	t.Run("moves funds between accounts", func(t *testing.T) {
		ledger := seed(t, map[domain.Identity]int64{"alice": 1000})

		require.NoError(t, ledger.Apply(ctx, []Leg{
			Debit("alice", 300),
			Credit("bob", 300),
		}))

		alice, _ := ledger.Balance(ctx, "alice")
		bob, _ := ledger.Balance(ctx, "bob")
		assert.Equal(t, int64(700), alice)
		assert.Equal(t, int64(300), bob)
	})

	t.Run("nets legs per account", func(t *testing.T) {
		// Debit 1000, refund 200: only the net 800 must be covered.
		ledger := seed(t, map[domain.Identity]int64{"alice": 800})

		require.NoError(t, ledger.Apply(ctx, []Leg{
			Debit("alice", 1000),
			Credit("bob", 800),
			Credit("alice", 200),
		}))

		alice, _ := ledger.Balance(ctx, "alice")
		assert.Equal(t, int64(0), alice)
	})

	t.Run("fails the whole batch on overdraw", func(t *testing.T) {
		ledger := seed(t, map[domain.Identity]int64{"alice": 100, "carol": 500})

		err := ledger.Apply(ctx, []Leg{
			Debit("carol", 200),
			Credit("bob", 200),
			Debit("alice", 300),
			Credit("bob", 300),
		})
		require.ErrorIs(t, err, sentinel.ErrInsufficientFunds)

		// Carol's leg would have succeeded alone; atomicity keeps it out too.
		carol, _ := ledger.Balance(ctx, "carol")
		bob, _ := ledger.Balance(ctx, "bob")
		assert.Equal(t, int64(500), carol)
		assert.Equal(t, int64(0), bob)
	})

	t.Run("rejects debit against an unknown account", func(t *testing.T) {
		ledger := NewInMemoryLedger()
		err := ledger.Apply(ctx, []Leg{Debit("ghost", 1), Credit("bob", 1)})
		assert.ErrorIs(t, err, sentinel.ErrInsufficientFunds)
	})

	t.Run("rejects empty account names", func(t *testing.T) {
		ledger := NewInMemoryLedger()
		err := ledger.Apply(ctx, []Leg{Credit("", 1)})
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		ledger := NewInMemoryLedger()
		assert.NoError(t, ledger.Apply(ctx, nil))
	})
}
