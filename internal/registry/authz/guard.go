package authz

import (
	"fmt"

	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/registry"
)

// RoleSource answers role and enablement questions about identities.
type RoleSource interface {
	AccountIs(identity account.Identity, role account.Role) bool
	IsEnable(identity account.Identity) bool
}

// Authorizer is the capability consumed by registries.
type Authorizer interface {
	HasRole(identity account.Identity, role account.Role) bool
	Authorize(identity account.Identity, role account.Role) error
}

// Guard is the default Authorizer backed by a RoleSource.
type Guard struct {
	// source resolves roles and enablement.
	source RoleSource
}

// New returns a guard backed by source.
func New(source RoleSource) *Guard {
	return &Guard{
		source: source,
	}
}

// HasRole reports whether identity holds role, regardless of enablement.
func (g *Guard) HasRole(identity account.Identity, role account.Role) bool {
	return g.source.AccountIs(identity, role)
}

// Authorize returns ErrNotAuthorized unless identity holds role and is enabled.
func (g *Guard) Authorize(identity account.Identity, role account.Role) error {
	if !g.HasRole(identity, role) {
		return fmt.Errorf("%q does not hold role %q: %w", identity, role, registry.ErrNotAuthorized)
	}

	if !g.source.IsEnable(identity) {
		return fmt.Errorf("%q is disabled: %w", identity, registry.ErrNotAuthorized)
	}

	return nil
}
