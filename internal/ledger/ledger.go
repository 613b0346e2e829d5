package ledger

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/oshokin/ledger-registry/internal/domain/account"
)

// Amount is a balance in the smallest ledger unit.
type Amount = uint64

// ReapedHandler is called with the identity whose balance fell to the dust threshold.
type ReapedHandler func(identity account.Identity)

// Ledger is the balance signal the account registry listens to.
type Ledger interface {
	BalanceOf(identity account.Identity) Amount
	Subscribe(handler ReapedHandler)
}

// Engine is a Ledger that also moves funds. Transfer reports whether the
// sender was reaped; subscribed handlers have run by the time it returns.
type Engine interface {
	Ledger
	Transfer(from, to account.Identity, amount Amount) (bool, error)
}

var _ Engine = (*Memory)(nil)

var (
	// ErrInsufficientBalance is returned when the sender cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBelowExistentialDeposit is returned when the receiver would end up below the deposit.
	ErrBelowExistentialDeposit = errors.New("below existential deposit")
	// ErrInvalidAmount is returned for zero transfers and invalid genesis balances.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Memory is an in-memory Ledger with transfers, issuance tracking and reaping.
type Memory struct {
	// balances holds the free balance of every live identity.
	balances map[account.Identity]Amount
	// totalIssuance is the sum of all live balances.
	totalIssuance Amount
	// existentialDeposit is the minimum balance an identity may hold.
	existentialDeposit Amount
	// handlers are notified about reaped identities.
	handlers []ReapedHandler
	// mu protects the fields above.
	mu sync.RWMutex
}

// NewMemory returns a ledger seeded with genesis balances.
// Every genesis balance must reach the existential deposit.
func NewMemory(existentialDeposit Amount, genesis map[account.Identity]Amount) (*Memory, error) {
	m := &Memory{
		balances:           make(map[account.Identity]Amount, len(genesis)),
		existentialDeposit: existentialDeposit,
	}

	for identity, balance := range genesis {
		if balance == 0 || balance < existentialDeposit {
			return nil, fmt.Errorf("genesis balance of %q is %d: %w", identity, balance, ErrBelowExistentialDeposit)
		}

		if m.totalIssuance+balance < m.totalIssuance {
			return nil, fmt.Errorf("genesis issuance overflows: %w", ErrInvalidAmount)
		}

		m.balances[identity] = balance
		m.totalIssuance += balance
	}

	return m, nil
}

// Subscribe registers handler for reaped notifications.
func (m *Memory) Subscribe(handler ReapedHandler) {
	if handler == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, handler)
}

// BalanceOf returns the free balance of identity; reaped and unknown identities hold zero.
func (m *Memory) BalanceOf(identity account.Identity) Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.balances[identity]
}

// TotalIssuance returns the sum of all live balances.
func (m *Memory) TotalIssuance() Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.totalIssuance
}

// ExistentialDeposit returns the dust threshold.
func (m *Memory) ExistentialDeposit() Amount {
	return m.existentialDeposit
}

// Balances returns a copy of every live balance.
func (m *Memory) Balances() map[account.Identity]Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.balances)
}

// Transfer moves amount from one identity to another.
// It reports whether the sender was reaped by the transfer.
func (m *Memory) Transfer(from, to account.Identity, amount Amount) (bool, error) {
	reaped, handlers, err := m.transfer(from, to, amount)
	if err != nil || !reaped {
		return false, err
	}

	// Handlers run outside the lock so that they may query balances.
	for _, handler := range handlers {
		handler(from)
	}

	return true, nil
}

func (m *Memory) transfer(from, to account.Identity, amount Amount) (bool, []ReapedHandler, error) {
	if amount == 0 {
		return false, nil, fmt.Errorf("transfer of zero: %w", ErrInvalidAmount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromBalance := m.balances[from]
	if fromBalance < amount {
		return false, nil, fmt.Errorf("transfer %d from %q holding %d: %w", amount, from, fromBalance, ErrInsufficientBalance)
	}

	if from == to {
		return false, nil, nil
	}

	toBalance := m.balances[to] + amount
	if toBalance < m.existentialDeposit {
		return false, nil, fmt.Errorf("transfer %d to %q: %w", amount, to, ErrBelowExistentialDeposit)
	}

	remaining := fromBalance - amount
	m.balances[to] = toBalance

	if remaining >= m.existentialDeposit && remaining > 0 {
		m.balances[from] = remaining

		return false, nil, nil
	}

	// The sender is reaped and its dust leaves the issuance.
	delete(m.balances, from)
	m.totalIssuance -= remaining

	return true, append([]ReapedHandler(nil), m.handlers...), nil
}
