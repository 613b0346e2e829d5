// Package registry holds the error taxonomy shared by the account and zone
// registries and the authorization guard.
//
// Operations return these sentinels, usually wrapped with context, so that
// transports can map them with errors.Is.
package registry
