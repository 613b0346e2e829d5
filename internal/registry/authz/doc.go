// Package authz implements the authorization guard consulted by every
// registry before it mutates state.
//
// The guard depends on a RoleSource rather than on a concrete registry, so
// any component able to answer role and enablement questions can back it.
package authz
