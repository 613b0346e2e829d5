package account

import (
	"strings"
	"time"
)

// Identity is the opaque key of an actor in the ledger.
type Identity string

// Role is the privilege tier held by an account.
type Role string

const (
	// RoleRegistrar may create and disable accounts and create zones.
	RoleRegistrar Role = "registrar"
	// RoleStandard holds no privileges.
	RoleStandard Role = "standard"
)

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleRegistrar:
		return RoleRegistrar, true
	case RoleStandard:
		return RoleStandard, true
	default:
		return "", false
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRegistrar || r == RoleStandard
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Account is the registry record of one identity.
type Account struct {
	// Identity is the key the record is stored under.
	Identity Identity
	// Role is the privilege tier of the account.
	Role Role
	// Enabled governs whether the identity may act as a caller.
	Enabled bool
	// CreatedAt is captured once when the record is (re)created.
	CreatedAt time.Time
}

// New returns an enabled account created at the given instant.
func New(identity Identity, role Role, createdAt time.Time) Account {
	return Account{
		Identity:  identity,
		Role:      role,
		Enabled:   true,
		CreatedAt: createdAt,
	}
}

// Is reports whether the account holds role, regardless of enablement.
func (a Account) Is(role Role) bool {
	return a.Role == role
}

// Age returns how long the account has existed at now.
// The second result is false when now precedes the creation time.
func (a Account) Age(now time.Time) (time.Duration, bool) {
	if now.Before(a.CreatedAt) {
		return 0, false
	}

	return now.Sub(a.CreatedAt), true
}
