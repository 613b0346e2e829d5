package zones

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/event"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/registry"
	"github.com/oshokin/ledger-registry/internal/registry/authz"
)

// Registry owns the zone id to zone mapping for coordinate type C.
// It is not safe for concurrent use.
type Registry[C zone.Coord] struct {
	// zones stores the catalogued zones by id.
	zones map[uint32]zone.Zone[C]
	// total is both the next id and the number of zones.
	total uint32
	// guard gates zone creation.
	guard authz.Authorizer
	// events receives ZoneCreated events.
	events event.Recorder
}

// New returns an empty registry gated by guard.
func New[C zone.Coord](guard authz.Authorizer, events event.Recorder) *Registry[C] {
	return &Registry[C]{
		zones:  make(map[uint32]zone.Zone[C]),
		guard:  guard,
		events: events,
	}
}

// Add catalogs a new zone on behalf of caller and returns its id.
func (r *Registry[C]) Add(caller account.Identity, zoneType zone.Type, box zone.Box3D[C]) (uint32, error) {
	if caller == "" {
		return 0, fmt.Errorf("add zone: caller: %w", registry.ErrNoneValue)
	}

	if !zoneType.Valid() {
		return 0, fmt.Errorf("add zone: type %q: %w", zoneType, registry.ErrInvalidData)
	}

	if err := r.guard.Authorize(caller, account.RoleRegistrar); err != nil {
		return 0, fmt.Errorf("add zone: %w", err)
	}

	if r.total == math.MaxUint32 {
		return 0, fmt.Errorf("add zone: id space exhausted: %w", registry.ErrInvalidData)
	}

	id := r.total
	r.zones[id] = zone.New(id, zoneType, box)
	r.total = id + 1

	if r.events != nil {
		r.events.Record(event.ZoneCreated(id, caller, zoneType))
	}

	return id, nil
}

// ZoneIs reports whether the zone with id has zoneType.
// A missing zone yields false together with ErrNotExists.
func (r *Registry[C]) ZoneIs(id uint32, zoneType zone.Type) (bool, error) {
	z, err := r.Zone(id)
	if err != nil {
		return false, err
	}

	return z.Is(zoneType), nil
}

// Zone returns the zone with id.
func (r *Registry[C]) Zone(id uint32) (zone.Zone[C], error) {
	z, ok := r.zones[id]
	if !ok {
		return zone.Zone[C]{}, fmt.Errorf("zone %d: %w", id, registry.ErrNotExists)
	}

	return z, nil
}

// TotalBoxes returns the number of catalogued zones.
func (r *Registry[C]) TotalBoxes() uint32 {
	return r.total
}

// Zones returns every zone ordered by id.
func (r *Registry[C]) Zones() []zone.Zone[C] {
	result := make([]zone.Zone[C], 0, len(r.zones))
	for _, z := range r.zones {
		result = append(result, z)
	}

	slices.SortFunc(result, func(a, b zone.Zone[C]) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return result
}

// Restore replaces the catalog with zones loaded from a snapshot.
// The ids must be exactly 0..total-1.
func (r *Registry[C]) Restore(total uint32, zones []zone.Zone[C]) error {
	if uint64(len(zones)) != uint64(total) {
		return fmt.Errorf("restore zones: %d zones for counter %d: %w", len(zones), total, registry.ErrInvalidData)
	}

	restored := make(map[uint32]zone.Zone[C], len(zones))

	for _, z := range zones {
		if z.ID >= total {
			return fmt.Errorf("restore zone %d: beyond counter %d: %w", z.ID, total, registry.ErrInvalidData)
		}

		if !z.Type.Valid() {
			return fmt.Errorf("restore zone %d: type %q: %w", z.ID, z.Type, registry.ErrInvalidData)
		}

		if _, dup := restored[z.ID]; dup {
			return fmt.Errorf("restore zone %d: duplicate: %w", z.ID, registry.ErrInvalidData)
		}

		restored[z.ID] = z
	}

	r.zones = restored
	r.total = total

	return nil
}
