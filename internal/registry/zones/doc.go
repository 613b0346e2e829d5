// Package zones implements the append-only catalog of spatial zones.
//
// Identifiers are allocated from a running counter that is also the zone
// count; the catalog never updates or deletes a zone.
package zones
