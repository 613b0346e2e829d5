package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseRole checks known roles, normalization and rejection of unknown input.
func TestParseRole(t *testing.T) {
	t.Parallel()

	cases := map[string]Role{
		"registrar":   RoleRegistrar,
		" Registrar ": RoleRegistrar,
		"STANDARD":    RoleStandard,
	}
	for s, want := range cases {
		got, ok := ParseRole(s)
		require.True(t, ok, s)
		require.Equal(t, want, got)
	}

	_, ok := ParseRole("root")
	require.False(t, ok)
	require.False(t, Role("root").Valid())
}

// TestAccountAge verifies age arithmetic and the failure for instants before creation.
func TestAccountAge(t *testing.T) {
	t.Parallel()

	a := New("2", RoleRegistrar, time.UnixMilli(5000))
	require.True(t, a.Enabled)
	require.True(t, a.Is(RoleRegistrar))
	require.False(t, a.Is(RoleStandard))

	age, ok := a.Age(time.UnixMilli(20000))
	require.True(t, ok)
	require.Equal(t, 15*time.Second, age)

	age, ok = a.Age(time.UnixMilli(5000))
	require.True(t, ok)
	require.Zero(t, age)

	_, ok = a.Age(time.UnixMilli(4999))
	require.False(t, ok)
}
