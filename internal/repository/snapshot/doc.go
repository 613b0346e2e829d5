// Package snapshot implements persistence for the registry state.
//
// The FileRepository stores the accounts, the zones and the zone counter as
// YAML on disk. Records are written in a fixed order so that encoding the
// same state always yields the same bytes.
package snapshot
