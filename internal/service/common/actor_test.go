//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectIdentity ensures hostname and username are detected and non-empty.
func TestDetectIdentity(t *testing.T) {
	t.Parallel()

	identity, err := DetectIdentity()
	require.NoError(t, err)

	username, hostname, ok := strings.Cut(identity, "@")
	require.True(t, ok)
	require.NotEmpty(t, username)
	require.NotEmpty(t, hostname)
}

// TestResolveIdentity prefers the explicit identity.
func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	identity, err := ResolveIdentity("registrar-1")
	require.NoError(t, err)
	require.Equal(t, "registrar-1", identity)

	detected, err := ResolveIdentity("")
	require.NoError(t, err)
	require.NotEmpty(t, detected)
}
