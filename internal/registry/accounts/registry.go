package accounts

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oshokin/ledger-registry/internal/clock"
	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/event"
	"github.com/oshokin/ledger-registry/internal/registry"
	"github.com/oshokin/ledger-registry/internal/registry/authz"
)

// Registry owns the identity to account mapping.
type Registry struct {
	// accounts stores one record per identity.
	accounts map[account.Identity]account.Account
	// clock stamps account creation.
	clock clock.Clock
	// events receives the emitted domain events.
	events event.Recorder
	// guard gates mutating operations.
	guard authz.Authorizer
}

// Option configures a Registry.
type Option func(*Registry)

// WithAuthorizer replaces the default guard backed by the registry itself.
func WithAuthorizer(a authz.Authorizer) Option {
	return func(r *Registry) {
		if a != nil {
			r.guard = a
		}
	}
}

// New creates a registry seeded with an enabled genesis registrar.
// No other account can grant the first role, so the genesis identity is
// the root of every later authorization.
func New(clk clock.Clock, events event.Recorder, genesis account.Identity, opts ...Option) (*Registry, error) {
	if genesis == "" {
		return nil, fmt.Errorf("genesis registrar: %w", registry.ErrNoneValue)
	}

	r := &Registry{
		accounts: make(map[account.Identity]account.Account),
		clock:    clk,
		events:   events,
	}
	r.guard = authz.New(r)

	for _, opt := range opts {
		opt(r)
	}

	r.put(genesis, account.RoleRegistrar)

	return r, nil
}

// Guard returns the authorizer used by the registry, for sharing with other registries.
//
//nolint:ireturn // Callers only need the Authorizer methods.
func (r *Registry) Guard() authz.Authorizer {
	return r.guard
}

// Add creates or overwrites the account of target with role.
// Overwriting resets the creation time and clears any prior disablement.
func (r *Registry) Add(caller, target account.Identity, role account.Role) error {
	if caller == "" || target == "" {
		return fmt.Errorf("add account: identity: %w", registry.ErrNoneValue)
	}

	if !role.Valid() {
		return fmt.Errorf("add account: role %q: %w", role, registry.ErrInvalidData)
	}

	if err := r.guard.Authorize(caller, account.RoleRegistrar); err != nil {
		return fmt.Errorf("add account: %w", err)
	}

	r.put(target, role)

	return nil
}

// Disable turns off the account of target. Disabling oneself is never allowed.
// Disabling an already disabled account succeeds without emitting an event.
func (r *Registry) Disable(caller, target account.Identity) error {
	if caller == "" || target == "" {
		return fmt.Errorf("disable account: identity: %w", registry.ErrNoneValue)
	}

	if caller == target {
		return fmt.Errorf("disable account %q: self-disable: %w", target, registry.ErrInvalidAction)
	}

	if err := r.guard.Authorize(caller, account.RoleRegistrar); err != nil {
		return fmt.Errorf("disable account: %w", err)
	}

	if _, ok := r.accounts[target]; !ok {
		return fmt.Errorf("disable account %q: %w", target, registry.ErrNotExists)
	}

	r.disable(target, event.ReasonExplicit)

	return nil
}

// OnReaped disables identity after the ledger reaped its balance.
// It is a system transition: no authorization is checked and unknown
// identities are ignored.
func (r *Registry) OnReaped(identity account.Identity) {
	if _, ok := r.accounts[identity]; !ok {
		return
	}

	r.disable(identity, event.ReasonReaped)
}

// AccountIs reports whether identity holds role, regardless of enablement.
func (r *Registry) AccountIs(identity account.Identity, role account.Role) bool {
	a, ok := r.accounts[identity]

	return ok && a.Is(role)
}

// IsEnable reports whether identity has an enabled account.
func (r *Registry) IsEnable(identity account.Identity) bool {
	return r.accounts[identity].Enabled
}

// Age returns the age of the account of identity at now.
func (r *Registry) Age(identity account.Identity, now time.Time) (time.Duration, error) {
	a, err := r.Account(identity)
	if err != nil {
		return 0, err
	}

	age, ok := a.Age(now)
	if !ok {
		return 0, fmt.Errorf("age of %q: %s precedes creation at %s: %w",
			identity, now.Format(time.RFC3339Nano), a.CreatedAt.Format(time.RFC3339Nano), registry.ErrInvalidData)
	}

	return age, nil
}

// Account returns the record of identity.
func (r *Registry) Account(identity account.Identity) (account.Account, error) {
	a, ok := r.accounts[identity]
	if !ok {
		return account.Account{}, fmt.Errorf("account %q: %w", identity, registry.ErrNotExists)
	}

	return a, nil
}

// Accounts returns every record ordered by identity.
func (r *Registry) Accounts() []account.Account {
	result := make([]account.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, a)
	}

	slices.SortFunc(result, func(a, b account.Account) int {
		return strings.Compare(string(a.Identity), string(b.Identity))
	})

	return result
}

// Restore replaces the stored accounts with records loaded from a snapshot.
// Records are taken verbatim and no events are emitted.
func (r *Registry) Restore(records []account.Account) error {
	restored := make(map[account.Identity]account.Account, len(records))

	for _, a := range records {
		if a.Identity == "" {
			return fmt.Errorf("restore accounts: identity: %w", registry.ErrNoneValue)
		}

		if !a.Role.Valid() {
			return fmt.Errorf("restore account %q: role %q: %w", a.Identity, a.Role, registry.ErrInvalidData)
		}

		if _, dup := restored[a.Identity]; dup {
			return fmt.Errorf("restore account %q: duplicate: %w", a.Identity, registry.ErrInvalidData)
		}

		restored[a.Identity] = a
	}

	r.accounts = restored

	return nil
}

// put stores a fresh enabled account and emits AccountCreated.
func (r *Registry) put(identity account.Identity, role account.Role) {
	r.accounts[identity] = account.New(identity, role, r.clock.Now())
	r.record(event.AccountCreated(identity, role))
}

// disable flips an existing account to disabled, emitting once per transition.
func (r *Registry) disable(identity account.Identity, reason event.DisableReason) {
	a := r.accounts[identity]
	if !a.Enabled {
		return
	}

	a.Enabled = false
	r.accounts[identity] = a
	r.record(event.AccountDisabled(identity, reason))
}

func (r *Registry) record(e event.Event) {
	if r.events != nil {
		r.events.Record(e)
	}
}
