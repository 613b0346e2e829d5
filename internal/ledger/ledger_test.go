package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ledger-registry/internal/clock"
	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/registry/accounts"
)

const existentialDeposit = 500

// newMemory returns a ledger where identity "1" holds the whole issuance.
func newMemory(t *testing.T) *Memory {
	t.Helper()

	m, err := NewMemory(existentialDeposit, map[account.Identity]Amount{"1": 100000})
	require.NoError(t, err)

	return m
}

// TestNewMemory_RejectsDustGenesis ensures genesis balances respect the deposit.
func TestNewMemory_RejectsDustGenesis(t *testing.T) {
	t.Parallel()

	m, err := NewMemory(existentialDeposit, map[account.Identity]Amount{"1": 10})
	require.ErrorIs(t, err, ErrBelowExistentialDeposit)
	require.Nil(t, m)
}

// TestMemory_Balance follows transfers and dust removal from the total issuance.
func TestMemory_Balance(t *testing.T) {
	t.Parallel()

	m := newMemory(t)
	require.Equal(t, Amount(existentialDeposit), m.ExistentialDeposit())
	require.Equal(t, Amount(100000), m.TotalIssuance())
	require.Equal(t, Amount(100000), m.BalanceOf("1"))
	require.Zero(t, m.BalanceOf("2"))

	reaped, err := m.Transfer("1", "2", 50000)
	require.NoError(t, err)
	require.False(t, reaped)
	require.Equal(t, Amount(50000), m.BalanceOf("1"))
	require.Equal(t, Amount(50000), m.BalanceOf("2"))
	require.Equal(t, Amount(100000), m.TotalIssuance())

	// The sender keeps 10, which is dust: it is reaped and the dust is burnt.
	reaped, err = m.Transfer("1", "2", 49990)
	require.NoError(t, err)
	require.True(t, reaped)
	require.Zero(t, m.BalanceOf("1"))
	require.Equal(t, Amount(99990), m.TotalIssuance())
	require.NotContains(t, m.Balances(), account.Identity("1"))
}

// TestMemory_TransferErrors covers insufficient funds, dust receivers and zero amounts.
func TestMemory_TransferErrors(t *testing.T) {
	t.Parallel()

	m := newMemory(t)

	_, err := m.Transfer("2", "1", 1)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = m.Transfer("1", "2", existentialDeposit-1)
	require.ErrorIs(t, err, ErrBelowExistentialDeposit)

	_, err = m.Transfer("1", "2", 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	reaped, err := m.Transfer("1", "1", 100000)
	require.NoError(t, err)
	require.False(t, reaped)
	require.Equal(t, Amount(100000), m.BalanceOf("1"))
}

// TestMemory_ReapedDisablesAccount wires the account registry to the reaped signal.
func TestMemory_ReapedDisablesAccount(t *testing.T) {
	t.Parallel()

	m := newMemory(t)

	accs, err := accounts.New(clock.NewManual(time.UnixMilli(0)), nil, "1")
	require.NoError(t, err)

	m.Subscribe(accs.OnReaped)

	_, err = m.Transfer("1", "2", 10000)
	require.NoError(t, err)
	require.NoError(t, accs.Add("1", "2", account.RoleRegistrar))
	require.True(t, accs.IsEnable("2"))

	reaped, err := m.Transfer("2", "3", 10000)
	require.NoError(t, err)
	require.True(t, reaped)
	require.False(t, accs.IsEnable("2"))
	require.True(t, accs.IsEnable("1"))
}

// TestMemory_HandlersMayReadBalances checks handlers run after the ledger lock is released.
func TestMemory_HandlersMayReadBalances(t *testing.T) {
	t.Parallel()

	m := newMemory(t)

	var seen []Amount

	m.Subscribe(func(identity account.Identity) {
		seen = append(seen, m.BalanceOf(identity))
	})
	m.Subscribe(nil)

	_, err := m.Transfer("1", "2", 100000)
	require.NoError(t, err)
	require.Equal(t, []Amount{0}, seen)
}
