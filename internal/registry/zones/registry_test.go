package zones

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ledger-registry/internal/clock"
	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/event"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/registry"
	"github.com/oshokin/ledger-registry/internal/registry/accounts"
)

const (
	registrar account.Identity = "1"
	standard  account.Identity = "2"
)

// newRegistry wires a zone registry to an account registry guard for tests.
func newRegistry(t *testing.T) (*Registry[uint32], *accounts.Registry, *event.Log) {
	t.Helper()

	log := event.NewLog()

	accs, err := accounts.New(clock.NewManual(time.UnixMilli(0)), log, registrar)
	require.NoError(t, err)
	require.NoError(t, accs.Add(registrar, standard, account.RoleStandard))

	log.Drain()

	return New[uint32](accs.Guard(), log), accs, log
}

func box(a, b uint32) zone.Box3D[uint32] {
	return zone.NewBox(zone.NewPoint(a, a, a), zone.NewPoint(b, b, b))
}

// TestRegistry_Scenario allocates sequential ids and checks type lookups.
func TestRegistry_Scenario(t *testing.T) {
	t.Parallel()

	r, _, log := newRegistry(t)

	id, err := r.Add(registrar, zone.TypeGreen, box(0, 10))
	require.NoError(t, err)
	require.Equal(t, uint32(0), id)

	id, err = r.Add(registrar, zone.TypeRed, box(10, 20))
	require.NoError(t, err)
	require.Equal(t, uint32(1), id)

	ok, err := r.ZoneIs(0, zone.TypeGreen)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.ZoneIs(1, zone.TypeGreen)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = r.ZoneIs(99, zone.TypeGreen)
	require.ErrorIs(t, err, registry.ErrNotExists)
	require.False(t, ok)

	require.Equal(t, uint32(2), r.TotalBoxes())

	events := log.Drain()
	require.Len(t, events, 2)
	require.Equal(t, event.KindZoneCreated, events[1].Kind)
	require.Equal(t, uint32(1), events[1].ZoneID)
	require.Equal(t, registrar, events[1].Creator)
	require.Equal(t, zone.TypeRed, events[1].ZoneType)
}

// TestRegistry_SequentialIDs checks ids follow call order and match the counter.
func TestRegistry_SequentialIDs(t *testing.T) {
	t.Parallel()

	r, _, _ := newRegistry(t)

	const n = 25
	for i := uint32(0); i < n; i++ {
		id, err := r.Add(registrar, zone.TypeParent, box(i, i+1))
		require.NoError(t, err)
		require.Equal(t, i, id)
	}

	require.Equal(t, uint32(n), r.TotalBoxes())
	require.Len(t, r.Zones(), n)
}

// TestRegistry_Unauthorized ensures failed adds leave the catalog untouched.
func TestRegistry_Unauthorized(t *testing.T) {
	t.Parallel()

	r, accs, log := newRegistry(t)

	_, err := r.Add(standard, zone.TypeGreen, box(0, 1))
	require.ErrorIs(t, err, registry.ErrNotAuthorized)

	_, err = r.Add("unknown", zone.TypeGreen, box(0, 1))
	require.ErrorIs(t, err, registry.ErrNotAuthorized)

	require.NoError(t, accs.Add(registrar, "3", account.RoleRegistrar))
	accs.OnReaped("3")

	_, err = r.Add("3", zone.TypeGreen, box(0, 1))
	require.ErrorIs(t, err, registry.ErrNotAuthorized)

	require.Zero(t, r.TotalBoxes())
	require.Empty(t, r.Zones())

	for _, e := range log.Drain() {
		require.NotEqual(t, event.KindZoneCreated, e.Kind)
	}
}

// TestRegistry_InvalidInput covers empty callers, unknown types and an exhausted counter.
func TestRegistry_InvalidInput(t *testing.T) {
	t.Parallel()

	r, _, _ := newRegistry(t)

	_, err := r.Add("", zone.TypeGreen, box(0, 1))
	require.ErrorIs(t, err, registry.ErrNoneValue)

	_, err = r.Add(registrar, zone.Type("blue"), box(0, 1))
	require.ErrorIs(t, err, registry.ErrInvalidData)

	r.total = math.MaxUint32

	_, err = r.Add(registrar, zone.TypeGreen, box(0, 1))
	require.ErrorIs(t, err, registry.ErrInvalidData)
	require.Equal(t, uint32(math.MaxUint32), r.TotalBoxes())
}

// TestRegistry_Restore checks counter and id consistency on restore.
func TestRegistry_Restore(t *testing.T) {
	t.Parallel()

	r, _, _ := newRegistry(t)

	zs := []zone.Zone[uint32]{
		zone.New(1, zone.TypeRed, box(1, 2)),
		zone.New(0, zone.TypeGreen, box(0, 1)),
	}
	require.NoError(t, r.Restore(2, zs))
	require.Equal(t, uint32(2), r.TotalBoxes())

	z, err := r.Zone(1)
	require.NoError(t, err)
	require.Equal(t, zone.TypeRed, z.Type)

	id, err := r.Add(registrar, zone.TypeGreen, box(5, 6))
	require.NoError(t, err)
	require.Equal(t, uint32(2), id)

	require.ErrorIs(t, r.Restore(3, zs), registry.ErrInvalidData)
	require.ErrorIs(t, r.Restore(2, []zone.Zone[uint32]{zs[0], zs[0]}), registry.ErrInvalidData)
	require.ErrorIs(t, r.Restore(1, []zone.Zone[uint32]{zs[0]}), registry.ErrInvalidData)
	require.Equal(t, uint32(3), r.TotalBoxes())
}
